package config

import "time"

const (
	LogLevelDebug   string = "debug"
	LogLevelInfo    string = "info"
	LogLevelWarning string = "warn"
	LogLevelError   string = "error"

	LogFilePath string = "raid-simulator/log/log_output.txt"

	// Version is the CLI's self-reported version string.
	Version string = "0.1.0"
)

const (
	// DataShards is D, the number of data fragments per stripe (spec §6).
	DataShards = 6
	// ParityShards is the fixed parity count (P and Q).
	ParityShards = 2
	// TotalShards is D + ParityShards, the node count of a session.
	TotalShards = DataShards + ParityShards

	// LivenessTimeout bounds a node liveness probe (spec §5/§6).
	LivenessTimeout = 2 * time.Second
)

// NodeAddr is one (host, port) entry of the ordered node list of
// length TotalShards that a storage session addresses (spec §6).
type NodeAddr struct {
	Host string
	Port int
}
