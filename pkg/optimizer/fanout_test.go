package optimizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/promptopt-go/internal/testutil"
	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	"github.com/XiaoConstantine/promptopt-go/pkg/variants"
)

// recordingObserver captures hook invocations for assertions. VariantSettled
// arrives from concurrent workers, so everything is mutex-guarded.
type recordingObserver struct {
	core.NopObserver

	mu       sync.Mutex
	started  []int
	settled  []core.VariantResult
	verdicts []core.Verdict
	evolved  int
}

func (o *recordingObserver) RoundStarted(ctx context.Context, round, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, round)
}

func (o *recordingObserver) VariantSettled(ctx context.Context, round int, result core.VariantResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settled = append(o.settled, result)
}

func (o *recordingObserver) VerdictProduced(ctx context.Context, round int, verdict core.Verdict) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verdicts = append(o.verdicts, verdict)
}

func (o *recordingObserver) PopulationEvolved(ctx context.Context, round int, population []*core.Variant) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evolved++
}

func (o *recordingObserver) settledCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.settled)
}

func TestRunAllPreservesOrderUnderLatency(t *testing.T) {
	population := variants.Seed()

	// Earlier variants answer slower, so completion order inverts input
	// order; result order must not.
	gateway := core.GatewayFunc(func(ctx context.Context, prompt, description string) (*core.AgentResponse, error) {
		for i, v := range population {
			if strings.Contains(description, v.Name) {
				time.Sleep(time.Duration(len(population)-i) * 10 * time.Millisecond)
				return &core.AgentResponse{OutputText: fmt.Sprintf("answer from %s", v.Name)}, nil
			}
		}
		return nil, fmt.Errorf("unexpected description %q", description)
	})

	results := RunAll(context.Background(), 1, "task", "", population, gateway, core.NopObserver{})

	require.Len(t, results, len(population))
	for i, v := range population {
		assert.Equal(t, v.Name, results[i].VariantName)
		assert.Equal(t, fmt.Sprintf("answer from %s", v.Name), results[i].OutputText)
		assert.True(t, results[i].Succeeded)
	}
}

func TestRunAllIsolatesGatewayFailures(t *testing.T) {
	population := variants.Seed()

	gateway := core.GatewayFunc(func(ctx context.Context, prompt, description string) (*core.AgentResponse, error) {
		if strings.Contains(description, "expert-persona") {
			return nil, fmt.Errorf("connection reset by peer")
		}
		return &core.AgentResponse{OutputText: "fine"}, nil
	})

	results := RunAll(context.Background(), 1, "task", "", population, gateway, core.NopObserver{})

	require.Len(t, results, 5)
	for i, r := range results {
		if i == 2 {
			assert.False(t, r.Succeeded)
			assert.Equal(t, "connection reset by peer", r.OutputText)
			continue
		}
		assert.True(t, r.Succeeded, "sibling %d must be unaffected", i)
		assert.Equal(t, "fine", r.OutputText)
	}
}

func TestRunAllIsolatesPanics(t *testing.T) {
	population := variants.Seed()
	population[1] = core.NewVariant("step-by-step", func(task, context string) string {
		panic("render exploded")
	})

	gateway := testutil.NewTextGateway("ok")

	results := RunAll(context.Background(), 1, "task", "", population, gateway, core.NopObserver{})

	require.Len(t, results, 5)
	assert.False(t, results[1].Succeeded)
	assert.Contains(t, results[1].OutputText, "render exploded")
	for i, r := range results {
		if i == 1 {
			continue
		}
		assert.True(t, r.Succeeded, "sibling %d must be unaffected", i)
	}
}

func TestRunAllDisambiguatesPrompts(t *testing.T) {
	population := variants.Seed()
	gateway := &testutil.RecordingGateway{}

	results := RunAll(context.Background(), 1, "write a haiku", "", population, gateway, core.NopObserver{})

	require.Len(t, results, 5)

	// The suffix carries the 1-based ordinal and the strategy name
	assert.True(t, strings.HasSuffix(results[0].PromptSent, "(Prompt approach 1: direct)"))
	assert.True(t, strings.HasSuffix(results[2].PromptSent, "(Prompt approach 3: expert-persona)"))
	assert.True(t, strings.HasSuffix(results[4].PromptSent, "(Prompt approach 5: self-critique)"))

	// The recorded prompts are exactly what the results claim was sent
	sent := gateway.Prompts()
	require.Len(t, sent, 5)
	for _, r := range results {
		assert.Contains(t, sent, r.PromptSent)
	}

	descs := gateway.Descriptions()
	assert.Contains(t, descs, "variant 1/5: direct")
	assert.Contains(t, descs, "variant 3/5: expert-persona")
}

func TestRunAllEmptyPopulation(t *testing.T) {
	gateway := &testutil.RecordingGateway{}

	results := RunAll(context.Background(), 1, "task", "", nil, gateway, core.NopObserver{})

	assert.Empty(t, results)
	assert.Empty(t, gateway.Prompts())
}

func TestRunAllNotifiesObserver(t *testing.T) {
	population := variants.Seed()
	observer := &recordingObserver{}

	RunAll(context.Background(), 1, "task", "", population, testutil.NewTextGateway("ok"), observer)

	assert.Equal(t, len(population), observer.settledCount())
}

func TestRunAllRecordsElapsedAndUsage(t *testing.T) {
	population := variants.Seed()[:1]
	gateway := core.GatewayFunc(func(ctx context.Context, prompt, description string) (*core.AgentResponse, error) {
		time.Sleep(5 * time.Millisecond)
		return &core.AgentResponse{
			OutputText: "ok",
			Usage:      &core.TokenUsage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16},
		}, nil
	})

	results := RunAll(context.Background(), 1, "task", "", population, gateway, core.NopObserver{})

	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Elapsed, 5*time.Millisecond)
	require.NotNil(t, results[0].Usage)
	assert.Equal(t, 16, results[0].Usage.TotalTokens)
}
