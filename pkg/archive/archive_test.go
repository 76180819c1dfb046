package archive

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	result "github.com/cloud-bulldozer/globesort-perf/pkg/results"
	"github.com/cloud-bulldozer/globesort-perf/pkg/sample"
)

func testData() result.Data {
	return result.Data{
		UUID:      "run-1",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Endpoint:  config.Endpoint{Host: "10.0.0.5", Port: 50051},
		Sample:    sample.Sample{ProbeRoundTrip: 0.004, SortWallClock: 0.5, ServerProcessing: 0.3, Values: 1000},
		Metrics:   sample.Metrics{OneWayLatency: 0.002, ApplicationThroughput: 2000, NetworkTime: 0.2, NetworkThroughput: 10000},
	}
}

func TestBuildDoc(t *testing.T) {
	d := BuildDoc(testData())
	if d.Server != "10.0.0.5:50051" || d.Latency != 0.002 || d.NetworkThroughput != 10000 || d.Values != 1000 {
		t.Fatalf("unexpected doc %+v", d)
	}
}

func TestWriteJSONResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONResult(&buf, testData()); err != nil {
		t.Fatal(err)
	}
	var doc Doc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.UUID != "run-1" || doc.ApplicationThroughput != 2000 || doc.SortWallClock != 0.5 {
		t.Fatalf("unexpected doc %+v", doc)
	}
}

func TestWriteCSVResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSVResult(&buf, testData()); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 7 {
		t.Fatalf("got %d records, want header plus 6 metrics", len(records))
	}
	if records[1][3] != "One-way latency" || records[1][4] != "0.002" {
		t.Fatalf("unexpected first row %v", records[1])
	}
	if records[6][4] != "10000" {
		t.Fatalf("unexpected last row %v", records[6])
	}
}
