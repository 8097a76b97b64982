// Package optimizer drives the round loop: fan the population out against
// the gateway, judge the results, evolve the losers, repeat. Rounds are
// strictly sequential; concurrency lives only inside a round's fan-out.
package optimizer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	"github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/judge"
	"github.com/XiaoConstantine/promptopt-go/pkg/logging"
	"github.com/XiaoConstantine/promptopt-go/pkg/variants"
)

// DefaultIterations is the round count used when the caller does not choose
// one.
const DefaultIterations = 3

// Evaluator produces a verdict for one round's results. judge.Judge is the
// standard implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, task string, results []core.VariantResult) core.Verdict
}

// EvolveFunc rewrites the population between rounds. variants.Evolve is the
// standard implementation.
type EvolveFunc func(current []*core.Variant, verdict core.Verdict) []*core.Variant

// Loop owns one optimization configuration. A Loop is safe to reuse across
// Run calls; each call builds its own population and history, so concurrent
// runs are fully independent.
type Loop struct {
	gateway    core.Gateway
	judge      Evaluator
	evolve     EvolveFunc
	observer   core.Observer
	seed       []*core.Variant
	iterations int
}

// Option configures a Loop.
type Option func(*Loop)

// WithIterations sets the number of rounds. Non-positive values are ignored
// and the default stands.
func WithIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.iterations = n
		}
	}
}

// WithPopulation replaces the seed population.
func WithPopulation(population []*core.Variant) Option {
	return func(l *Loop) {
		if len(population) > 0 {
			l.seed = population
		}
	}
}

// WithJudge replaces the verdict producer.
func WithJudge(e Evaluator) Option {
	return func(l *Loop) {
		if e != nil {
			l.judge = e
		}
	}
}

// WithEvolver replaces the population evolution step.
func WithEvolver(fn EvolveFunc) Option {
	return func(l *Loop) {
		if fn != nil {
			l.evolve = fn
		}
	}
}

// WithObserver attaches a progress observer.
func WithObserver(o core.Observer) Option {
	return func(l *Loop) {
		if o != nil {
			l.observer = o
		}
	}
}

// New creates a loop around the given gateway. Defaults: three rounds, the
// standard seed population, a judge on the same gateway, the standard
// evolver, and no observer.
func New(gateway core.Gateway, opts ...Option) *Loop {
	l := &Loop{
		gateway:    gateway,
		judge:      judge.New(gateway),
		evolve:     variants.Evolve,
		observer:   core.NopObserver{},
		seed:       variants.Seed(),
		iterations: DefaultIterations,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunResult is the full record of one optimization run.
type RunResult struct {
	RunID      string             `json:"run_id"`
	Task       string             `json:"task"`
	Context    string             `json:"context,omitempty"`
	History    []core.RoundRecord `json:"history"`
	Population []*core.Variant    `json:"-"`
	Cancelled  bool               `json:"cancelled"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// FinalRound returns the last completed round, if any.
func (r *RunResult) FinalRound() (core.RoundRecord, bool) {
	if len(r.History) == 0 {
		return core.RoundRecord{}, false
	}
	return r.History[len(r.History)-1], true
}

// Run executes the configured number of rounds for one task. The only error
// it returns is for an empty task; everything that can go wrong inside a
// round is captured in the history instead. Cancellation is observed only
// at round boundaries: a cancelled context stops further rounds and marks
// the result, while the round already in flight always runs to completion
// (its stage work is shielded from the caller's cancellation).
func (l *Loop) Run(ctx context.Context, task, taskContext string) (*RunResult, error) {
	if strings.TrimSpace(task) == "" {
		return nil, errors.New(errors.InvalidInput, "task must not be empty")
	}

	logger := logging.GetLogger()

	result := &RunResult{
		RunID:     uuid.New().String(),
		Task:      task,
		Context:   taskContext,
		StartedAt: time.Now(),
	}

	ctx = logging.WithRunID(ctx, result.RunID)
	logger.Info(ctx, "starting optimization: %d rounds over %d variants", l.iterations, len(l.seed))

	population := l.seed
	history := make([]core.RoundRecord, 0, l.iterations)

	for round := 1; round <= l.iterations; round++ {
		if ctx.Err() != nil {
			logger.Info(ctx, "cancellation observed before round %d, stopping", round)
			result.Cancelled = true
			break
		}

		// Stage work runs on a shielded context: cancellation only takes
		// effect at the next round boundary.
		roundCtx := logging.WithRound(context.WithoutCancel(ctx), round)

		l.observer.RoundStarted(roundCtx, round, l.iterations)

		results := RunAll(roundCtx, round, task, taskContext, population, l.gateway, l.observer)

		verdict := l.judge.Evaluate(roundCtx, task, results)
		l.observer.VerdictProduced(roundCtx, round, verdict)

		history = append(history, core.RoundRecord{
			Round:   round,
			Results: results,
			Verdict: verdict,
		})

		// Evolution runs only mid-run and only when the judge attributed the
		// win to prompt phrasing; a chance win would make mutation discard
		// useful diversity on a spurious signal.
		if round < l.iterations && verdict.PromptWasDecisive {
			population = l.evolve(population, verdict)
			l.observer.PopulationEvolved(roundCtx, round, population)
		}
	}

	result.History = history
	result.Population = population
	result.FinishedAt = time.Now()

	logger.Info(ctx, "optimization finished: %d rounds recorded, cancelled=%v", len(result.History), result.Cancelled)

	return result, nil
}
