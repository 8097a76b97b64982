package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ConsoleOutput formats logs for human readability.
type ConsoleOutput struct {
	mu       sync.Mutex
	writer   io.Writer
	color    bool // Whether to use ANSI color codes
	jsonMode bool // Emit one JSON object per line instead of text
}

type ConsoleOutputOption func(*ConsoleOutput)

func WithColor(enabled bool) ConsoleOutputOption {
	return func(c *ConsoleOutput) {
		c.color = enabled
	}
}

// WithJSON switches the output to one JSON object per line, for hosts that
// collect logs rather than read them.
func WithJSON(enabled bool) ConsoleOutputOption {
	return func(c *ConsoleOutput) {
		c.jsonMode = enabled
	}
}

func NewConsoleOutput(useStderr bool, opts ...ConsoleOutputOption) *ConsoleOutput {
	writer := os.Stdout
	if useStderr {
		writer = os.Stderr
	}

	c := &ConsoleOutput{
		writer: writer,
		color:  true, // Enable colors by default
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Helper function to get ANSI color codes for different severity levels.
func getSeverityColor(s Severity) string {
	switch s {
	case DEBUG:
		return "\033[37m" // Gray
	case INFO:
		return "\033[32m" // Green
	case WARN:
		return "\033[33m" // Yellow
	case ERROR:
		return "\033[31m" // Red
	case FATAL:
		return "\033[35m" // Magenta
	default:
		return ""
	}
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}

	var result string
	for k, v := range fields {
		// Prompts and outputs can run long; truncate for console display
		if k == "prompt" || k == "output" {
			str := fmt.Sprintf("%v", v)
			if len(str) > 100 {
				str = str[:97] + "..."
			}
			result += fmt.Sprintf("%s=%q ", k, str)
		} else {
			result += fmt.Sprintf("%s=%v ", k, v)
		}
	}

	return result
}

// entryJSON flattens an entry into the wire shape shared by JSON outputs.
func entryJSON(e LogEntry) map[string]any {
	m := map[string]any{
		"time":     time.Unix(0, e.Time).Format(time.RFC3339Nano),
		"severity": e.Severity.String(),
		"message":  e.Message,
		"caller":   fmt.Sprintf("%s:%d", e.File, e.Line),
	}
	if e.RunID != "" {
		m["run_id"] = e.RunID
	}
	if e.Round > 0 {
		m["round"] = e.Round
	}
	if e.Usage != nil {
		m["tokens"] = e.Usage.TotalTokens
	}
	for k, v := range e.Fields {
		m[k] = v
	}
	return m
}

func (o *ConsoleOutput) Write(e LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.jsonMode {
		data, err := json.Marshal(entryJSON(e))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(o.writer, string(data))
		return err
	}

	timestamp := time.Unix(0, e.Time).Format("2006-01-02 15:04:05.000")

	var levelColor, resetColor string
	if o.color {
		levelColor = getSeverityColor(e.Severity)
		resetColor = "\033[0m"
	}

	// Format for easy reading
	basic := fmt.Sprintf("%s %s%-5s%s [%s:%d] %s",
		timestamp,
		levelColor,
		e.Severity,
		resetColor,
		e.File,
		e.Line,
		e.Message,
	)

	if e.RunID != "" {
		basic += fmt.Sprintf(" [run=%s]", e.RunID)
	}
	if e.Round > 0 {
		basic += fmt.Sprintf(" [round=%d]", e.Round)
	}
	if e.Usage != nil {
		basic += fmt.Sprintf(" [tokens=%d]", e.Usage.TotalTokens)
	}
	if len(e.Fields) > 0 {
		basic += " " + formatFields(e.Fields)
	}

	_, err := fmt.Fprintln(o.writer, basic)

	return err
}

func (o *ConsoleOutput) Sync() error {
	if syncer, ok := o.writer.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Close cleans up any resources.
func (o *ConsoleOutput) Close() error {
	if closer, ok := o.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// FileOutput appends JSON-encoded entries to a log file.
type FileOutput struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileOutput(path string) (*FileOutput, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileOutput{file: f}, nil
}

func (o *FileOutput) Write(e LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(entryJSON(e))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.file, string(data))
	return err
}

func (o *FileOutput) Sync() error {
	return o.file.Sync()
}

func (o *FileOutput) Close() error {
	return o.file.Close()
}
