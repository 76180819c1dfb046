package result

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	"github.com/cloud-bulldozer/globesort-perf/pkg/sample"
)

func testData() Data {
	return Data{
		UUID:      "4f0b6a52-6a9c-4d53-9d3a-2b0f2e6c9c11",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Endpoint:  config.Endpoint{Host: "10.0.0.5", Port: 50051},
		Sample:    sample.Sample{ProbeRoundTrip: 0.004, SortWallClock: 0.5, ServerProcessing: 0.3, Values: 1000},
		Metrics:   sample.Metrics{OneWayLatency: 0.002, ApplicationThroughput: 2000, NetworkTime: 0.2, NetworkThroughput: 10000},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(testData())
	if len(rows) != 6 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Value != 0.002 || rows[5].Value != 10000 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		row  Row
		want string
	}{
		{Row{Value: 0.0020004, Unit: SecondsUnit}, "0.002"},
		{Row{Value: 0.5, Unit: SecondsUnit}, "0.5"},
		{Row{Value: 10000, Unit: BytesPerSecond}, "10,000.00"},
		{Row{Value: 1234567.891, Unit: ValuesPerSec}, "1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.row); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestShowResult(t *testing.T) {
	var buf bytes.Buffer
	ShowResult(&buf, testData())
	out := buf.String()
	for _, want := range []string{"One-way latency", "10.0.0.5:50051", "10,000.00", "2,000.00", "bytes/s", "Run 4f0b6a52"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}
