package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	"github.com/XiaoConstantine/promptopt-go/pkg/logging"
)

// RunAll executes every variant in the population concurrently and returns
// one result per variant, in population order. A variant's gateway error or
// panic is captured in its own result and never disturbs its siblings; the
// call returns only after every variant has settled. The observer's
// VariantSettled hook fires from each worker goroutine as its variant
// completes.
func RunAll(ctx context.Context, round int, task, taskContext string, population []*core.Variant, gateway core.Gateway, observer core.Observer) []core.VariantResult {
	if len(population) == 0 {
		return []core.VariantResult{}
	}

	results := make([]core.VariantResult, len(population))

	p := pool.New().WithMaxGoroutines(len(population))
	for i, v := range population {
		p.Go(func() {
			results[i] = runOne(ctx, task, taskContext, i, len(population), v, gateway)
			observer.VariantSettled(ctx, round, results[i])
		})
	}
	p.Wait()

	return results
}

// runOne renders, disambiguates, and invokes a single variant. The named
// return lets the deferred recover turn a panic anywhere in the variant's
// work into a failed result.
func runOne(ctx context.Context, task, taskContext string, index, total int, v *core.Variant, gateway core.Gateway) (result core.VariantResult) {
	logger := logging.GetLogger()
	start := time.Now()

	result = core.VariantResult{VariantName: v.Name}

	defer func() {
		if r := recover(); r != nil {
			result.Succeeded = false
			result.OutputText = fmt.Sprintf("variant execution panicked: %v", r)
			result.Elapsed = time.Since(start)
			logger.Error(ctx, "variant %q panicked: %v", v.Name, r)
		}
	}()

	// The suffix tells the agent which phrasing attempt this is, so parallel
	// invocations against the same backend stay distinguishable.
	prompt := v.Render(task, taskContext) + fmt.Sprintf("\n\n(Prompt approach %d: %s)", index+1, v.Name)
	result.PromptSent = prompt

	resp, err := gateway.Invoke(ctx, prompt, fmt.Sprintf("variant %d/%d: %s", index+1, total, v.Name))
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Succeeded = false
		result.OutputText = err.Error()
		return result
	}

	result.OutputText = resp.OutputText
	result.Succeeded = true
	result.Usage = resp.Usage

	return result
}
