// Package judge turns one round's variant results into a structured verdict
// by asking the gateway to compare them. The model's reply is untrusted
// free text; every failure mode collapses into the documented default
// verdict so a round always produces something usable.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	"github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/logging"
)

// Judge compares a round's results with a single gateway invocation.
type Judge struct {
	gateway core.Gateway
}

// New creates a judge backed by the given gateway.
func New(gateway core.Gateway) *Judge {
	return &Judge{gateway: gateway}
}

// Evaluate builds the comparison prompt, invokes the gateway exactly once,
// and decodes the reply. It never returns an error: an unreachable gateway,
// a reply with no JSON object, a decode failure, or an out-of-range index
// all yield core.DefaultVerdict. No retry.
func (j *Judge) Evaluate(ctx context.Context, task string, results []core.VariantResult) core.Verdict {
	logger := logging.GetLogger()

	prompt := buildComparisonPrompt(task, results)
	resp, err := j.gateway.Invoke(ctx, prompt, fmt.Sprintf("judging %d results", len(results)))
	if err != nil {
		logger.Warn(ctx, "judge invocation failed, using default verdict: %v", err)
		return core.DefaultVerdict()
	}

	verdict, err := parseVerdict(resp.OutputText, len(results))
	if err != nil {
		logger.Warn(ctx, "judge reply unusable, using default verdict: %v", err)
		return core.DefaultVerdict()
	}

	return verdict
}

// buildComparisonPrompt embeds the task and every result, labeled by its
// zero-based index so the reply's bestResultIndex addresses the results
// slice directly. Failed variants stay visible with a failure marker so the
// judge can penalize them instead of silently comparing a smaller field.
func buildComparisonPrompt(task string, results []core.VariantResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are evaluating %d responses to the same task. Each response was produced by a differently phrased prompt.\n\n", len(results))
	sb.WriteString("## Task\n")
	sb.WriteString(task)
	sb.WriteString("\n\n## Results\n")

	for i, r := range results {
		fmt.Fprintf(&sb, "\n### Result %d (%s)\n", i, r.VariantName)
		if r.Succeeded {
			sb.WriteString(r.OutputText)
		} else {
			sb.WriteString("[FAILED] ")
			sb.WriteString(r.OutputText)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nPick the best result, judge whether the prompt phrasing (rather than chance) explains the win, and suggest how the other prompts should change.\n\n")
	sb.WriteString("## Required Output Format\n")
	sb.WriteString("Respond with a JSON object in this exact format:\n\n")
	sb.WriteString("```json\n{\n")
	sb.WriteString("  \"bestResultIndex\": <number: zero-based index of the best result>,\n")
	sb.WriteString("  \"reasoning\": \"<string: why that result is best>\",\n")
	sb.WriteString("  \"wasPromptBetter\": <boolean: true when the prompt phrasing explains the win>,\n")
	sb.WriteString("  \"promptImprovements\": [\"<string: phrasing quality the winner demonstrated>\"],\n")
	sb.WriteString("  \"nextPromptSuggestions\": [\"<string: concrete idea for the next round's prompts>\"]\n")
	sb.WriteString("}\n```\n")

	return sb.String()
}

// verdictPayload mirrors the wire keys the judge is instructed to use.
// Pointer fields make absence distinguishable from zero values.
type verdictPayload struct {
	BestResultIndex       *int     `json:"bestResultIndex"`
	Reasoning             *string  `json:"reasoning"`
	WasPromptBetter       *bool    `json:"wasPromptBetter"`
	PromptImprovements    []string `json:"promptImprovements"`
	NextPromptSuggestions []string `json:"nextPromptSuggestions"`
}

// parseVerdict extracts the first balanced JSON object from the reply and
// decodes it. The reply is accepted only when bestResultIndex, reasoning,
// and wasPromptBetter are all present, correctly typed, and the index is
// within [0, resultCount); the list fields may be absent and normalize to
// empty. Anything less trustworthy is an error, which the caller folds into
// the default verdict.
func parseVerdict(reply string, resultCount int) (core.Verdict, error) {
	raw, ok := ExtractJSONObject(reply)
	if !ok {
		return core.Verdict{}, errors.New(errors.JudgeUnparsable, "reply holds no JSON object")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return core.Verdict{}, errors.Wrap(err, errors.JudgeUnparsable, "decoding judge reply")
	}

	if payload.BestResultIndex == nil || payload.Reasoning == nil || payload.WasPromptBetter == nil {
		return core.Verdict{}, errors.New(errors.JudgeUnparsable, "judge reply missing required fields")
	}
	if *payload.BestResultIndex < 0 || *payload.BestResultIndex >= resultCount {
		return core.Verdict{}, errors.WithFields(
			errors.New(errors.JudgeUnparsable, "judge index out of range"),
			errors.Fields{"index": *payload.BestResultIndex, "results": resultCount},
		)
	}

	verdict := core.Verdict{
		BestIndex:         *payload.BestResultIndex,
		Reasoning:         *payload.Reasoning,
		PromptWasDecisive: *payload.WasPromptBetter,
		Improvements:      payload.PromptImprovements,
		Suggestions:       payload.NextPromptSuggestions,
	}
	if verdict.Improvements == nil {
		verdict.Improvements = []string{}
	}
	if verdict.Suggestions == nil {
		verdict.Suggestions = []string{}
	}

	return verdict, nil
}
