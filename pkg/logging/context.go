package logging

import (
	"context"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

type runIDKeyType struct{}
type roundKeyType struct{}
type usageKeyType struct{}

var (
	runIDKey = runIDKeyType{}
	roundKey = roundKeyType{}
	usageKey = usageKeyType{}
)

// WithRunID stamps the context with the active run's identifier. Every log
// entry emitted under this context carries it.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID retrieves the run identifier from the context.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

// WithRound stamps the context with the current 1-based round number.
func WithRound(ctx context.Context, round int) context.Context {
	return context.WithValue(ctx, roundKey, round)
}

// Round retrieves the round number from the context.
func Round(ctx context.Context) (int, bool) {
	round, ok := ctx.Value(roundKey).(int)
	return round, ok
}

// WithUsage attaches token accounting to the context so the entries logged
// under it carry the counts as structured data.
func WithUsage(ctx context.Context, usage *core.TokenUsage) context.Context {
	return context.WithValue(ctx, usageKey, usage)
}

// Usage retrieves token accounting from the context.
func Usage(ctx context.Context) (*core.TokenUsage, bool) {
	usage, ok := ctx.Value(usageKey).(*core.TokenUsage)
	return usage, ok
}
