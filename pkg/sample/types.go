package sample

// Sample describes the timings recorded by one measurement run.
// Client side durations come from a monotonic clock and are never negative.
type Sample struct {
	ProbeRoundTrip   float64 `json:"probeRoundTripSeconds"`
	SortWallClock    float64 `json:"sortWallClockSeconds"`
	ServerProcessing float64 `json:"serverProcessingSeconds"`
	Values           int     `json:"valueCount"`
}

// Metrics are derived from a Sample.
type Metrics struct {
	// OneWayLatency assumes outbound and inbound delay are symmetric.
	OneWayLatency float64 `json:"oneWayLatencySeconds"`
	// ApplicationThroughput is values sorted per second end to end.
	ApplicationThroughput float64 `json:"applicationThroughput"`
	// NetworkTime is the wall clock minus the server processing time.
	NetworkTime float64 `json:"networkTimeSeconds"`
	// NetworkThroughput is one-way bytes per second assuming 4 byte values.
	NetworkThroughput float64 `json:"networkThroughputOneWay"`
}

// SortResult is what the server returns for a sort request.
type SortResult struct {
	Values            []int32
	ProcessingSeconds float64
}
