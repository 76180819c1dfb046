// Package session runs the two phase measurement against the sort
// service: a probe for round trip latency, then one timed sort.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	log "github.com/cloud-bulldozer/globesort-perf/pkg/logging"
	"github.com/cloud-bulldozer/globesort-perf/pkg/sample"
	"github.com/cloud-bulldozer/globesort-perf/pkg/transport"
	"github.com/cloud-bulldozer/globesort-perf/pkg/values"
	"github.com/jmhodges/clock"
	"github.com/sirupsen/logrus"
)

// bytesPerValue is the size of an int32 on the wire used by the
// throughput estimate.
const bytesPerValue = 4

// Channel is the blocking call surface the controller drives.
type Channel interface {
	Probe(ctx context.Context) error
	Sort(ctx context.Context, vals []int32) (sample.SortResult, error)
	Close(grace time.Duration) error
}

// Opener establishes a Channel to an endpoint.
type Opener func(ctx context.Context, ep config.Endpoint) (Channel, error)

// TransportOpener opens real gRPC channels.
func TransportOpener(opts transport.Options) Opener {
	return func(ctx context.Context, ep config.Endpoint) (Channel, error) {
		ch, err := transport.Open(ctx, ep, opts)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}

// MeasurementError reports timings from which metrics cannot be derived.
type MeasurementError struct {
	Reason string
}

func (e *MeasurementError) Error() string {
	return "measurement unusable: " + e.Reason
}

// VerifyError reports a sort result that is not the sorted request.
type VerifyError struct {
	Err error
}

func (e *VerifyError) Error() string {
	return "sort result rejected: " + e.Err.Error()
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Controller executes the measurement protocol once per Run.
type Controller struct {
	Endpoint config.Endpoint
	// Values is the number of integers to sort.
	Values int
	Open   Opener
	// Source feeds the value generator, nil uses the runtime generator.
	Source values.Source
	// Clock must be monotonic; clock.New() is.
	Clock clock.Clock
	// Grace bounds channel teardown.
	Grace time.Duration
	// Verify checks the result after timing has stopped.
	Verify bool
}

// New returns a Controller for cfg with a real clock and transport.
func New(ep config.Endpoint, n int, cfg config.Config, src values.Source) *Controller {
	return &Controller{
		Endpoint: ep,
		Values:   n,
		Open:     TransportOpener(transport.OptionsFromConfig(cfg)),
		Source:   src,
		Clock:    clock.New(),
		Grace:    cfg.ShutdownGrace,
		Verify:   cfg.Verify,
	}
}

// Run opens the channel, probes, sorts and derives the metrics. The
// channel is closed exactly once on every path after a successful open.
// Any failure aborts the run without retry and without metrics.
func (c *Controller) Run(ctx context.Context) (sample.Sample, sample.Metrics, error) {
	s := sample.Sample{Values: c.Values}
	ch, err := c.Open(ctx, c.Endpoint)
	if err != nil {
		return s, sample.Metrics{}, err
	}
	defer c.teardown(ch)

	log.Infof("🏓 Pinging %s...", c.Endpoint)
	t0 := c.Clock.Now()
	if err := ch.Probe(ctx); err != nil {
		return s, sample.Metrics{}, err
	}
	t1 := c.Clock.Now()
	s.ProbeRoundTrip = t1.Sub(t0).Seconds()
	log.Infof("Ping successful, latency is %gs", s.ProbeRoundTrip/2)

	vals, err := values.Generate(c.Values, c.Source)
	if err != nil {
		return s, sample.Metrics{}, err
	}
	log.Infof("🔥 Requesting server to sort %d values", len(vals))
	t2 := c.Clock.Now()
	res, err := ch.Sort(ctx, vals)
	if err != nil {
		return s, sample.Metrics{}, err
	}
	t3 := c.Clock.Now()
	s.SortWallClock = t3.Sub(t2).Seconds()
	s.ServerProcessing = res.ProcessingSeconds
	log.Infof("Sorted array in %gs, server reported %gs", s.SortWallClock, s.ServerProcessing)

	if c.Verify {
		if err := values.CheckSorted(vals, res.Values); err != nil {
			return s, sample.Metrics{}, &VerifyError{Err: err}
		}
		log.Debug("Sort result verified")
	}

	m, err := Derive(s)
	if err != nil {
		return s, sample.Metrics{}, err
	}
	return s, m, nil
}

func (c *Controller) teardown(ch Channel) {
	err := ch.Close(c.Grace)
	if err == nil {
		return
	}
	entry := log.WithFields(logrus.Fields{"endpoint": c.Endpoint.Address(), "grace": c.Grace})
	if errors.Is(err, transport.ErrTeardownTimeout) {
		entry.Warn("😥 Channel not closed within grace period, abandoning it")
		return
	}
	entry.Warnf("Closing channel: %v", err)
}

// Derive computes the reported metrics from s. Network time is always
// filled in, even when it is not positive; in that case, or when the
// wall clock is zero, the metrics are returned with a MeasurementError.
func Derive(s sample.Sample) (sample.Metrics, error) {
	m := sample.Metrics{
		OneWayLatency: s.ProbeRoundTrip / 2,
		NetworkTime:   s.SortWallClock - s.ServerProcessing,
	}
	if s.SortWallClock <= 0 {
		return m, &MeasurementError{Reason: "sort wall clock time is zero"}
	}
	m.ApplicationThroughput = float64(s.Values) / s.SortWallClock
	if m.NetworkTime <= 0 {
		return m, &MeasurementError{Reason: fmt.Sprintf("server processing time %gs is not below wall clock time %gs", s.ServerProcessing, s.SortWallClock)}
	}
	m.NetworkThroughput = float64(bytesPerValue*s.Values) / m.NetworkTime / 2
	return m, nil
}
