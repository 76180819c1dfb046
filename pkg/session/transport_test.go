package session

import (
	"context"
	"errors"
	"net"
	"slices"
	"testing"
	"time"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	"github.com/cloud-bulldozer/globesort-perf/pkg/globesort"
	"github.com/cloud-bulldozer/globesort-perf/pkg/sample"
	"github.com/cloud-bulldozer/globesort-perf/pkg/transport"
	"github.com/cloud-bulldozer/globesort-perf/pkg/values"
	"github.com/jmhodges/clock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

// sortServer sorts in process and reports a fixed processing time.
type sortServer struct{}

func (sortServer) Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (sortServer) SortIntegers(_ context.Context, in *globesort.IntArray) (*globesort.IntArray, error) {
	out := slices.Clone(in.Values)
	slices.Sort(out)
	return &globesort.IntArray{Values: out, Time: 1e-9}, nil
}

func bufOpener(lis *bufconn.Listener) Opener {
	return TransportOpener(transport.Options{
		MaxMessageSize: config.DefaultMaxMessageSize,
		ConnectTimeout: 5 * time.Second,
		ShutdownGrace:  time.Second,
		Dialer: func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		},
	})
}

func TestRunOverGRPC(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.ForceServerCodec(globesort.Codec{}))
	globesort.RegisterGlobeSortServer(s, sortServer{})
	go s.Serve(lis)
	defer s.Stop()

	c := &Controller{
		Endpoint: config.Endpoint{Host: "bufnet", Port: 50051},
		Values:   5000,
		Open:     bufOpener(lis),
		Source:   values.NewSource(7),
		Clock:    clock.New(),
		Grace:    time.Second,
		Verify:   true,
	}
	smp, m, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if smp.Values != 5000 || smp.ServerProcessing != 1e-9 {
		t.Fatalf("sample = %+v", smp)
	}
	if smp.ProbeRoundTrip < 0 || smp.SortWallClock <= 0 {
		t.Fatalf("timings must come from a monotonic clock, got %+v", smp)
	}
	if m.OneWayLatency != smp.ProbeRoundTrip/2 {
		t.Errorf("one way latency = %g, round trip %g", m.OneWayLatency, smp.ProbeRoundTrip)
	}
	if m.ApplicationThroughput != 5000/smp.SortWallClock {
		t.Errorf("application throughput = %g", m.ApplicationThroughput)
	}
}

func TestRunOverGRPCUnreachable(t *testing.T) {
	lis := bufconn.Listen(1 << 10)
	lis.Close()
	c := &Controller{
		Endpoint: config.Endpoint{Host: "bufnet", Port: 50051},
		Values:   10,
		Open:     bufOpener(lis),
		Clock:    clock.New(),
		Grace:    time.Second,
	}
	_, m, err := c.Run(context.Background())
	var connErr *transport.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if m != (sample.Metrics{}) {
		t.Fatalf("no metrics expected, got %+v", m)
	}
}
