// Package metrics exposes a measurement run as Prometheus gauges.
package metrics

import (
	"fmt"
	"io"

	"github.com/cloud-bulldozer/globesort-perf/pkg/logging"
	result "github.com/cloud-bulldozer/globesort-perf/pkg/results"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

const (
	namespace = "globesort"
	job       = "globesort-perf"
)

type gauge struct {
	name  string
	help  string
	value float64
}

func gauges(d result.Data) []gauge {
	return []gauge{
		{"values", "Number of integers sent to the sort service.", float64(d.Values)},
		{"probe_round_trip_seconds", "Round trip time of the liveness probe.", d.ProbeRoundTrip},
		{"one_way_latency_seconds", "Half the probe round trip.", d.OneWayLatency},
		{"sort_wall_clock_seconds", "Client observed duration of the sort call.", d.SortWallClock},
		{"server_processing_seconds", "Sort duration reported by the server.", d.ServerProcessing},
		{"network_time_seconds", "Sort wall clock minus server processing time.", d.NetworkTime},
		{"application_throughput_values_per_second", "Values sorted per second end to end.", d.ApplicationThroughput},
		{"network_throughput_bytes_per_second", "Estimated one-way network throughput.", d.NetworkThroughput},
	}
}

// NewRegistry returns a registry holding one gauge per reported value,
// labelled with the server and run id.
func NewRegistry(d result.Data) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"server": d.Endpoint.Address(), "uuid": d.UUID}
	for _, g := range gauges(d) {
		pg := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        g.name,
			Help:        g.help,
			ConstLabels: labels,
		})
		pg.Set(g.value)
		if err := reg.Register(pg); err != nil {
			return nil, fmt.Errorf("register %s: %w", g.name, err)
		}
	}
	return reg, nil
}

// WritePromResult writes the run in the Prometheus text exposition format.
func WritePromResult(w io.Writer, d result.Data) error {
	reg, err := NewRegistry(d)
	if err != nil {
		return err
	}
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Push sends the run to a Pushgateway.
func Push(url string, d result.Data) error {
	reg, err := NewRegistry(d)
	if err != nil {
		return err
	}
	logging.Infof("Pushing run %s to %s", d.UUID, url)
	return push.New(url, job).Gatherer(reg).Push()
}
