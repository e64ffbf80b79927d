package buildinfo

import "time"

// Set via -ldflags "-X github.com/xelth-com/receiptdesk/internal/buildinfo.CommitHash=..."
var (
	BuildTime  string
	CommitHash string
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Fields describes the running binary for /health and the startup log
func Fields() map[string]string {
	commit := CommitHash
	if commit == "" {
		commit = "dev"
	}
	return map[string]string{
		"commit":    commit,
		"buildTime": BuildTime,
		"startTime": StartTime,
	}
}
