package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/cloud-bulldozer/globesort-perf/pkg/logging"
	result "github.com/cloud-bulldozer/globesort-perf/pkg/results"
)

const ltcyMetric = "s"

// Doc struct of the JSON document to be indexed
type Doc struct {
	UUID                  string    `json:"uuid"`
	Timestamp             time.Time `json:"timestamp"`
	Server                string    `json:"server"`
	Values                int       `json:"values"`
	ProbeRoundTrip        float64   `json:"probeRoundTrip"`
	Latency               float64   `json:"latency"`
	LtcyMetric            string    `json:"ltcyMetric"`
	SortWallClock         float64   `json:"sortWallClock"`
	ServerProcessing      float64   `json:"serverProcessing"`
	NetworkTime           float64   `json:"networkTime"`
	ApplicationThroughput float64   `json:"applicationThroughput"`
	NetworkThroughput     float64   `json:"networkThroughput"`
	TputMetric            string    `json:"tputMetric"`
}

// Connect returns a client connected to the desired cluster.
func Connect(url, index string) (*indexers.Indexer, error) {
	indexerConfig := indexers.IndexerConfig{
		Type:               "opensearch",
		Servers:            []string{url},
		Index:              index,
		InsecureSkipVerify: true,
	}
	logging.Infof("📁 Creating indexer: %s", indexerConfig.Type)
	indexer, err := indexers.NewIndexer(indexerConfig)
	if err != nil {
		logging.Errorf("%v indexer: %v", indexerConfig.Type, err.Error())
		return nil, fmt.Errorf("failure while connecting to OpenSearch: %w", err)
	}
	logging.Infof("Connected to : %s ", url)
	return indexer, nil
}

// BuildDoc returns the document describing a run.
func BuildDoc(d result.Data) Doc {
	return Doc{
		UUID:                  d.UUID,
		Timestamp:             d.Timestamp.UTC(),
		Server:                d.Endpoint.Address(),
		Values:                d.Values,
		ProbeRoundTrip:        d.ProbeRoundTrip,
		Latency:               d.OneWayLatency,
		LtcyMetric:            ltcyMetric,
		SortWallClock:         d.SortWallClock,
		ServerProcessing:      d.ServerProcessing,
		NetworkTime:           d.NetworkTime,
		ApplicationThroughput: d.ApplicationThroughput,
		NetworkThroughput:     d.NetworkThroughput,
		TputMetric:            result.BytesPerSecond,
	}
}

// Index sends the run document to OpenSearch.
func Index(url, index string, d result.Data) error {
	esClient, err := Connect(url, index)
	if err != nil {
		return err
	}
	docs := []interface{}{BuildDoc(d)}
	logging.Infof("Indexing [%d] documents in %s with UUID %s", len(docs), index, d.UUID)
	resp, err := (*esClient).Index(docs, indexers.IndexingOpts{})
	if err != nil {
		return err
	}
	logging.Info(resp)
	return nil
}

// WriteJSONResult writes the run document as JSON
func WriteJSONResult(w io.Writer, d result.Data) error {
	p, err := json.MarshalIndent(BuildDoc(d), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(p))
	return err
}

// WriteCSVResult writes a header and one row per reported metric
func WriteCSVResult(w io.Writer, d result.Data) error {
	archive := csv.NewWriter(w)
	if err := archive.Write([]string{"UUID", "Server", "Values", "Metric", "Value", "Unit"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range result.Rows(d) {
		row := []string{
			d.UUID,
			d.Endpoint.Address(),
			strconv.Itoa(d.Values),
			r.Name,
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Unit,
		}
		if err := archive.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	archive.Flush()
	return archive.Error()
}
