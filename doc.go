// Package promptopt is a Go library for iterative prompt optimization against
// a live agent.
//
// PromptOpt-Go takes one task, fans a population of prompt phrasing strategies
// out against an agent gateway, has an LLM judge pick the strongest response,
// evolves the losing strategies with the judge's suggestions, and repeats for a
// configurable number of rounds. It focuses on making it easy to:
//   - Compare prompt phrasings empirically instead of by intuition
//   - Run the same loop against different agent backends
//   - Keep a full, replayable record of every round
//   - Produce a readable markdown report of what won and why
//
// Key Components:
//
//   - Core: Fundamental abstractions like Gateway, Variant, Verdict and
//     RoundRecord shared by every other package.
//
//   - Variants: The seed population of phrasing strategies (direct,
//     step-by-step, expert-persona, structured-output, self-critique) and the
//     evolution step that folds judge guidance into the losers between rounds.
//
//   - Judge: Builds the comparison prompt, extracts the first JSON object from
//     the reply, and decodes it into a verdict. An unparsable reply degrades to
//     a default verdict instead of failing the round.
//
//   - Optimizer: The round loop. Fan-out runs concurrently inside a round;
//     rounds themselves are strictly sequential, and cancellation is observed
//     only at round boundaries so in-flight work always completes.
//
//   - Report: Renders a run's history into markdown with per-round winners,
//     strategy analysis, deduplicated learnings, and the final best pair.
//
//   - Gateways for multiple agent backends:
//     * Anthropic Messages API
//     * MCP tool calls against a stdio server
//     * Any agent CLI that reads a prompt on stdin
//
//   - Archive: SQLite persistence for runs, used by the CLI to keep results
//     across invocations.
//
// Simple Example:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/XiaoConstantine/promptopt-go/pkg/gateway"
//	    "github.com/XiaoConstantine/promptopt-go/pkg/optimizer"
//	    "github.com/XiaoConstantine/promptopt-go/pkg/report"
//	)
//
//	func main() {
//	    // Uses ANTHROPIC_API_KEY and the default model
//	    gw, err := gateway.NewAnthropic("", "")
//	    if err != nil {
//	        log.Fatalf("Failed to build gateway: %v", err)
//	    }
//
//	    loop := optimizer.New(gw, optimizer.WithIterations(5))
//
//	    result, err := loop.Run(context.Background(), "Summarize this week's oncall report", "")
//	    if err != nil {
//	        log.Fatalf("Optimization failed: %v", err)
//	    }
//
//	    fmt.Println(report.Build(result))
//	}
//
// The promptopt-cli command wraps the same loop with configuration loading,
// signal handling, batch datasets and the run archive:
//
//	promptopt-cli run --task "Draft release notes" --iterations 5 --archive runs.db
//	promptopt-cli batch --dataset tasks.parquet
//	promptopt-cli strategies
//	promptopt-cli runs --archive runs.db
//
// For more examples and detailed documentation, visit:
// https://github.com/XiaoConstantine/promptopt-go
package promptopt
