// Package transport binds the sort service over a single plaintext
// gRPC channel.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	"github.com/cloud-bulldozer/globesort-perf/pkg/globesort"
	log "github.com/cloud-bulldozer/globesort-perf/pkg/logging"
	"github.com/cloud-bulldozer/globesort-perf/pkg/sample"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ErrTeardownTimeout is returned by Close when the channel did not shut
// down within the grace period.
var ErrTeardownTimeout = errors.New("channel teardown exceeded grace period")

// ConnectionError reports a channel that could not be established.
type ConnectionError struct {
	Endpoint config.Endpoint
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RPCError reports a failed probe or sort call.
type RPCError struct {
	Op      string
	Code    codes.Code
	Message string
	Err     error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s rpc failed: %s: %s", e.Op, e.Code, e.Message)
}

func (e *RPCError) Unwrap() error { return e.Err }

func rpcError(op string, err error) error {
	st := status.Convert(err)
	return &RPCError{Op: op, Code: st.Code(), Message: st.Message(), Err: err}
}

// Options tune the channel.
type Options struct {
	// MaxMessageSize is the inbound payload ceiling in bytes.
	MaxMessageSize int
	// ConnectTimeout bounds the handshake.
	ConnectTimeout time.Duration
	// ShutdownGrace bounds teardown of a channel that failed to open.
	ShutdownGrace time.Duration
	// Dialer replaces the TCP dialer, used for in-process servers.
	Dialer func(ctx context.Context, addr string) (net.Conn, error)
}

// OptionsFromConfig maps the tuning file onto channel options.
func OptionsFromConfig(c config.Config) Options {
	return Options{
		MaxMessageSize: c.MaxMessageSize,
		ConnectTimeout: c.ConnectTimeout,
		ShutdownGrace:  c.ShutdownGrace,
	}
}

// dialRecorder remembers the last dial failure so a failed handshake
// can report its cause.
type dialRecorder struct {
	dial func(ctx context.Context, addr string) (net.Conn, error)

	mu  sync.Mutex
	err error
}

func newDialRecorder(dial func(ctx context.Context, addr string) (net.Conn, error)) *dialRecorder {
	if dial == nil {
		var d net.Dialer
		dial = func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		}
	}
	return &dialRecorder{dial: dial}
}

func (r *dialRecorder) Dial(ctx context.Context, addr string) (net.Conn, error) {
	conn, err := r.dial(ctx, addr)
	if err != nil {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}
	return conn, err
}

func (r *dialRecorder) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Channel is an open connection to the sort service.
type Channel struct {
	endpoint config.Endpoint
	conn     *grpc.ClientConn
	client   globesort.GlobeSortClient
}

// Open connects to ep and waits until the channel is ready. It never
// retries: a transient failure during the handshake is returned as a
// ConnectionError.
func Open(ctx context.Context, ep config.Endpoint, opts Options) (*Channel, error) {
	if opts.MaxMessageSize < 1 {
		opts.MaxMessageSize = config.DefaultMaxMessageSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = config.DefaultConnectTimeout
	}
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = config.DefaultShutdownGrace
	}
	rec := newDialRecorder(opts.Dialer)
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(opts.MaxMessageSize)),
		grpc.WithContextDialer(rec.Dial),
	}
	conn, err := grpc.NewClient("passthrough:///"+ep.Address(), dialOpts...)
	if err != nil {
		return nil, &ConnectionError{Endpoint: ep, Err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := waitReady(ctx, conn, rec); err != nil {
		closeHalfOpen(ep, opts.ShutdownGrace, conn.Close)
		return nil, &ConnectionError{Endpoint: ep, Err: err}
	}
	log.Debugf("Channel to %s is ready", ep)
	return &Channel{
		endpoint: ep,
		conn:     conn,
		client:   globesort.NewGlobeSortClient(conn),
	}, nil
}

// closeHalfOpen tears down a channel that never became ready, with the
// same grace period as a regular Close.
func closeHalfOpen(ep config.Endpoint, grace time.Duration, closeFn func() error) {
	err := closeWithin(grace, closeFn)
	switch {
	case errors.Is(err, ErrTeardownTimeout):
		log.Warnf("😥 Channel to %s not closed within %s, abandoning it", ep, grace)
	case err != nil:
		log.Warnf("Closing channel to %s: %v", ep, err)
	}
}

func waitReady(ctx context.Context, conn *grpc.ClientConn, rec *dialRecorder) error {
	conn.Connect()
	for {
		s := conn.GetState()
		switch s {
		case connectivity.Ready:
			return nil
		case connectivity.TransientFailure:
			if cause := rec.lastErr(); cause != nil {
				return fmt.Errorf("handshake failed in state %s: %w", s, cause)
			}
			return fmt.Errorf("handshake failed in state %s", s)
		case connectivity.Shutdown:
			return errors.New("channel shut down")
		case connectivity.Idle:
			conn.Connect()
		}
		if !conn.WaitForStateChange(ctx, s) {
			if cause := rec.lastErr(); cause != nil {
				return fmt.Errorf("handshake did not complete in state %s: %w (last dial error: %v)", s, ctx.Err(), cause)
			}
			return fmt.Errorf("handshake did not complete in state %s: %w", s, ctx.Err())
		}
	}
}

// Probe issues the no-op liveness call.
func (c *Channel) Probe(ctx context.Context) error {
	_, err := c.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return rpcError("probe", err)
	}
	return nil
}

// Sort sends vals and blocks until the sorted result arrives. There is
// no deadline on the call beyond what ctx carries.
func (c *Channel) Sort(ctx context.Context, vals []int32) (sample.SortResult, error) {
	resp, err := c.client.SortIntegers(ctx, &globesort.IntArray{Values: vals})
	if err != nil {
		return sample.SortResult{}, rpcError("sort", err)
	}
	return sample.SortResult{Values: resp.Values, ProcessingSeconds: resp.Time}, nil
}

// Close shuts the channel down, abandoning it if that takes longer than grace.
func (c *Channel) Close(grace time.Duration) error {
	log.Debugf("Closing channel to %s", c.endpoint)
	return closeWithin(grace, c.conn.Close)
}

func closeWithin(grace time.Duration, closeFn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- closeFn()
	}()
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrTeardownTimeout
	}
}
