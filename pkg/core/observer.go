package core

import (
	"context"
)

// Observer receives progress callbacks from the optimization loop.
// RoundStarted, VerdictProduced, and PopulationEvolved run on the loop
// goroutine; VariantSettled fires from the worker goroutine that settled the
// variant and may run concurrently with its siblings. Implementations should
// return quickly and must not block on the loop's own outputs.
type Observer interface {
	// RoundStarted fires at the top of each round, before any invocation.
	RoundStarted(ctx context.Context, round, total int)
	// VariantSettled fires once per variant per round, when its result is in.
	VariantSettled(ctx context.Context, round int, result VariantResult)
	// VerdictProduced fires after judging, with the verdict actually adopted
	// (post-fallback, never the raw judge output).
	VerdictProduced(ctx context.Context, round int, verdict Verdict)
	// PopulationEvolved fires when a decisive round rewrites the population.
	PopulationEvolved(ctx context.Context, round int, variants []*Variant)
}

// NopObserver ignores every callback. Embed it to implement only the hooks
// a concrete observer cares about.
type NopObserver struct{}

func (NopObserver) RoundStarted(context.Context, int, int)             {}
func (NopObserver) VariantSettled(context.Context, int, VariantResult) {}
func (NopObserver) VerdictProduced(context.Context, int, Verdict)      {}
func (NopObserver) PopulationEvolved(context.Context, int, []*Variant) {}

var _ Observer = NopObserver{}
