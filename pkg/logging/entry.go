package logging

import (
	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

// LogEntry represents a structured log record with fields particular to
// optimization runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields, stamped from the context when present
	RunID string
	Round int

	// Usage carries token accounting when the emitting code attached it.
	Usage *core.TokenUsage

	// General structured data
	Fields map[string]any
}
