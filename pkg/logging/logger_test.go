package logging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

type MockOutput struct {
	entries []LogEntry
	mu      sync.Mutex
	closed  bool
}

func NewMockOutput() *MockOutput {
	return &MockOutput{
		entries: make([]LogEntry, 0),
	}
}

func (m *MockOutput) Write(entry LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("output is closed")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockOutput) Sync() error {
	return nil
}

func (m *MockOutput) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockOutput) GetEntries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries
}

func TestNewLogger(t *testing.T) {
	mockOutput := NewMockOutput()
	defaultFields := map[string]any{
		"service": "test",
		"version": "1.0",
	}

	cfg := Config{
		Severity:      INFO,
		Outputs:       []Output{mockOutput},
		DefaultFields: defaultFields,
	}

	logger := NewLogger(cfg)

	assert.Equal(t, INFO, logger.severity)
	assert.Equal(t, defaultFields, logger.fields)
}

func TestGlobalLogger(t *testing.T) {
	// Test default logger creation
	logger1 := GetLogger()
	assert.NotNil(t, logger1)

	// Test setting custom logger
	mockOutput := NewMockOutput()
	customLogger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})
	SetLogger(customLogger)

	logger2 := GetLogger()
	assert.Equal(t, customLogger, logger2)
}

func TestSeverityFiltering(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: WARN,
		Outputs:  []Output{mockOutput},
	})

	ctx := context.Background()
	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "dropped too")
	logger.Warn(ctx, "kept")
	logger.Error(ctx, "kept as well")

	entries := mockOutput.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "kept as well", entries[1].Message)
}

func TestRunContextStamping(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})

	ctx := WithRound(WithRunID(context.Background(), "run-42"), 3)
	logger.Info(ctx, "mid-round message")

	entries := mockOutput.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0].RunID)
	assert.Equal(t, 3, entries[0].Round)

	// A bare context leaves the fields empty
	logger.Info(context.Background(), "outside any run")
	entries = mockOutput.GetEntries()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[1].RunID)
	assert.Zero(t, entries[1].Round)
}

func TestRunContextHelpers(t *testing.T) {
	ctx := context.Background()

	_, ok := RunID(ctx)
	assert.False(t, ok)
	_, ok = Round(ctx)
	assert.False(t, ok)
	_, ok = Usage(ctx)
	assert.False(t, ok)

	ctx = WithRunID(ctx, "run-1")
	ctx = WithRound(ctx, 2)
	ctx = WithUsage(ctx, &core.TokenUsage{TotalTokens: 128})

	id, ok := RunID(ctx)
	require.True(t, ok)
	assert.Equal(t, "run-1", id)

	round, ok := Round(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, round)

	usage, ok := Usage(ctx)
	require.True(t, ok)
	assert.Equal(t, 128, usage.TotalTokens)
}

func TestUsageStamping(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})

	ctx := WithUsage(context.Background(), &core.TokenUsage{
		PromptTokens:     100,
		CompletionTokens: 40,
		TotalTokens:      140,
	})
	logger.Info(ctx, "variant settled")

	entries := mockOutput.GetEntries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Usage)
	assert.Equal(t, 140, entries[0].Usage.TotalTokens)
}

func TestConcurrentLogging(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})

	var wg sync.WaitGroup
	numGoroutines := 100
	messagesPerGoroutine := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()
			for j := 0; j < messagesPerGoroutine; j++ {
				logger.Info(context.Background(), "message from routine %d: %d", routineID, j)
			}
		}(i)
	}

	wg.Wait()

	entries := mockOutput.GetEntries()
	assert.Equal(t, numGoroutines*messagesPerGoroutine, len(entries))
}

func TestFieldTruncation(t *testing.T) {
	longText := strings.Repeat("a", 200)
	fields := map[string]any{
		"prompt": longText,
		"output": longText,
	}

	formatted := formatFields(fields)
	assert.True(t, len(formatted) < len(longText)*2)
	assert.Contains(t, formatted, "...")
}
