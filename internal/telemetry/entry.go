package telemetry

import "fmt"

// Severity classifies a log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Entry is one line of the simulated operations log. Seq increases by one
// for every entry a feed produces, starting at 1.
type Entry struct {
	Seq       uint64   `json:"seq"`
	Timestamp string   `json:"time"`
	Message   string   `json:"event"`
	Severity  Severity `json:"type"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Timestamp, e.Severity, e.Message)
}

// Messages produced by the generator.
const (
	MessageUpload = "Data packet uploaded (12MB)"
	MessageSync   = "Telemetry sync OK"
)

// TimestampFormat is the wall clock layout of generated entries.
const TimestampFormat = "15:04:05"

// seedEntries is the log content a viewer sees before the first tick.
var seedEntries = []Entry{
	{Timestamp: "14:20:01", Message: "Drone #4A connect to Relay", Severity: SeverityInfo},
	{Timestamp: "14:20:05", Message: "LiDAR Scan initiated", Severity: SeverityInfo},
	{Timestamp: "14:20:12", Message: "Thermal anomaly detected (Sector 7)", Severity: SeverityWarning},
}

// SeedEntries returns a copy of the initial log content.
func SeedEntries() []Entry {
	out := make([]Entry, len(seedEntries))
	copy(out, seedEntries)
	for i := range out {
		out[i].Seq = uint64(i + 1)
	}
	return out
}
