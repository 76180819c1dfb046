package result

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	"github.com/cloud-bulldozer/globesort-perf/pkg/logging"
	"github.com/cloud-bulldozer/globesort-perf/pkg/sample"
	stats "github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Units used when presenting the metrics
const (
	SecondsUnit    = "s"
	ValuesPerSec   = "values/s"
	BytesPerSecond = "bytes/s"
)

// Specify Language specific number printer as global variable
var printer = message.NewPrinter(language.English)

// Data describes the result of one measurement run
type Data struct {
	UUID      string          `json:"uuid"`
	Timestamp time.Time       `json:"timestamp"`
	Endpoint  config.Endpoint `json:"endpoint"`
	sample.Sample
	sample.Metrics
}

// Row is one reported metric
type Row struct {
	Name  string
	Value float64
	Unit  string
}

// Rows returns the reported metrics in presentation order
func Rows(d Data) []Row {
	return []Row{
		{"One-way latency", d.OneWayLatency, SecondsUnit},
		{"Sort invocation time", d.SortWallClock, SecondsUnit},
		{"Server processing time", d.ServerProcessing, SecondsUnit},
		{"Network time", d.NetworkTime, SecondsUnit},
		{"Application throughput", d.ApplicationThroughput, ValuesPerSec},
		{"One-way network throughput", d.NetworkThroughput, BytesPerSecond},
	}
}

// round keeps presentation precision, falling back to the raw value
func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return v
	}
	return r
}

// FormatValue renders a metric for humans: seconds with microsecond
// precision, rates with thousands separators.
func FormatValue(r Row) string {
	if r.Unit == SecondsUnit {
		return strconv.FormatFloat(round(r.Value, 6), 'f', -1, 64)
	}
	return printer.Sprintf("%.2f", round(r.Value, 2))
}

// Method to init common table structure.
func initTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

// ShowResult accepts Data and presents it to the user as a table
func ShowResult(w io.Writer, d Data) {
	logging.Debug("Rendering sort results")
	table := initTable(w, []string{"Result Type", "Server", "Values", "Metric", "Value", "Unit"})
	for _, r := range Rows(d) {
		table.Append([]string{"📊 Sort Results", d.Endpoint.Address(), strconv.Itoa(d.Values), r.Name, FormatValue(r), r.Unit})
	}
	table.Render()
	fmt.Fprintf(w, "Run %s\n", d.UUID)
}
