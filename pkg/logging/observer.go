package logging

import (
	"context"
	"strings"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

// loopObserver narrates loop progress through a Logger. It is the default
// observer wired by the CLI; library users supply their own core.Observer
// when they want different telemetry.
type loopObserver struct {
	logger *Logger
}

// NewObserver bridges loop progress callbacks onto the given logger.
func NewObserver(logger *Logger) core.Observer {
	return &loopObserver{logger: logger}
}

func (o *loopObserver) RoundStarted(ctx context.Context, round, total int) {
	o.logger.Info(ctx, "starting round %d of %d", round, total)
}

func (o *loopObserver) VariantSettled(ctx context.Context, round int, result core.VariantResult) {
	if result.Usage != nil {
		ctx = WithUsage(ctx, result.Usage)
	}
	if result.Succeeded {
		o.logger.Info(ctx, "variant %q settled in %s", result.VariantName, result.Elapsed)
	} else {
		o.logger.Warn(ctx, "variant %q failed: %s", result.VariantName, result.OutputText)
	}
	o.logger.Debug(ctx, "variant %q prompt: %s", result.VariantName, result.PromptSent)
}

func (o *loopObserver) VerdictProduced(ctx context.Context, round int, verdict core.Verdict) {
	o.logger.Info(ctx, "round %d verdict: best=%d decisive=%v", round, verdict.BestIndex, verdict.PromptWasDecisive)
	o.logger.Debug(ctx, "round %d reasoning: %s", round, verdict.Reasoning)
}

func (o *loopObserver) PopulationEvolved(ctx context.Context, round int, variants []*core.Variant) {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	o.logger.Info(ctx, "population evolved after round %d: %s", round, strings.Join(names, ", "))
}
