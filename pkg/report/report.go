// Package report renders an optimization run's history into a markdown
// report and a structured outcome. Everything here is a pure function of
// the run result; rendering the same history twice yields identical text.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	"github.com/XiaoConstantine/promptopt-go/pkg/optimizer"
)

const (
	// previewLimit bounds per-round output previews; the final best result
	// is always rendered in full.
	previewLimit     = 500
	truncationMarker = "... (truncated)"
)

// Outcome is the distilled end state of a run.
type Outcome struct {
	Rounds    int
	Cancelled bool
	// DominantStrategy is the most frequent decisive winner's raw name,
	// empty when no round was decisive.
	DominantStrategy string
	// BestStrategy is the final round's winning variant name.
	BestStrategy string
	// Learnings are all improvement strings across rounds, deduplicated in
	// first-occurrence order.
	Learnings []string
	// BestPrompt and BestOutput are the final round's best pair, untruncated.
	BestPrompt string
	BestOutput string
}

// Summarize computes the outcome without rendering markdown.
func Summarize(result *optimizer.RunResult) Outcome {
	outcome := Outcome{
		Rounds:    len(result.History),
		Cancelled: result.Cancelled,
		Learnings: dedupeLearnings(result.History),
	}
	outcome.DominantStrategy = dominantStrategy(result.History)

	if final, ok := result.FinalRound(); ok {
		best := final.BestResult()
		outcome.BestStrategy = best.VariantName
		outcome.BestPrompt = best.PromptSent
		outcome.BestOutput = best.OutputText
	}

	return outcome
}

// Build renders the full markdown report for a run. History order drives
// section order; ties and deduplication resolve by first encounter, so the
// output is deterministic.
func Build(result *optimizer.RunResult) string {
	var sb strings.Builder

	sb.WriteString("# Prompt Optimization Report\n\n")
	fmt.Fprintf(&sb, "**Task:** %s\n", result.Task)
	if result.Context != "" {
		fmt.Fprintf(&sb, "**Context:** %s\n", result.Context)
	}

	suffix := ""
	if result.Cancelled {
		suffix = " (cancelled early)"
	}
	fmt.Fprintf(&sb, "**Rounds completed:** %d%s\n", len(result.History), suffix)

	if len(result.History) == 0 {
		sb.WriteString("\nNo iterations completed.\n")
		return sb.String()
	}

	for _, round := range result.History {
		writeRound(&sb, round)
	}

	writeStrategyAnalysis(&sb, result.History)
	writeKeyLearnings(&sb, result.History)

	final, _ := result.FinalRound()
	best := final.BestResult()

	sb.WriteString("\n## Final Best Prompt\n\n")
	sb.WriteString("```text\n")
	sb.WriteString(best.PromptSent)
	sb.WriteString("\n```\n")

	// Rendered last and verbatim: whatever markdown the output contains
	// cannot disturb any section after it.
	sb.WriteString("\n## Final Best Result\n\n")
	sb.WriteString(best.OutputText)
	sb.WriteString("\n")

	return sb.String()
}

func writeRound(sb *strings.Builder, round core.RoundRecord) {
	fmt.Fprintf(sb, "\n## Round %d\n\n", round.Round)

	best := round.BestResult()
	marker := ""
	if !best.Succeeded {
		marker = " [FAILED]"
	}
	decisive := "not decisive"
	if round.Verdict.PromptWasDecisive {
		decisive = "decisive"
	}
	fmt.Fprintf(sb, "**Winner:** `%s`%s (%s)\n", best.VariantName, marker, decisive)
	fmt.Fprintf(sb, "**Reasoning:** %s\n", round.Verdict.Reasoning)

	sb.WriteString("\n**Improvements identified:**\n")
	if len(round.Verdict.Improvements) == 0 {
		sb.WriteString("- none noted\n")
	} else {
		for _, item := range round.Verdict.Improvements {
			fmt.Fprintf(sb, "- %s\n", item)
		}
	}

	sb.WriteString("\n**Winning output preview:**\n\n")
	sb.WriteString(preview(best.OutputText))
	sb.WriteString("\n")
}

func writeStrategyAnalysis(sb *strings.Builder, history []core.RoundRecord) {
	sb.WriteString("\n## Strategy Analysis\n\n")

	dominant := dominantStrategy(history)
	if dominant == "" {
		sb.WriteString("No dominant strategy was identified: no round produced a decisive winner.\n")
		return
	}
	fmt.Fprintf(sb, "The dominant strategy across decisive rounds was **%s** (`%s`).\n", displayName(dominant), dominant)
}

func writeKeyLearnings(sb *strings.Builder, history []core.RoundRecord) {
	sb.WriteString("\n## Key Learnings\n\n")

	learnings := dedupeLearnings(history)
	if len(learnings) == 0 {
		sb.WriteString("None recorded.\n")
		return
	}
	for _, item := range learnings {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}

// dominantStrategy returns the mode of winning strategy names over decisive
// rounds, ties broken by first-encountered order; empty when no round was
// decisive.
func dominantStrategy(history []core.RoundRecord) string {
	counts := make(map[string]int)
	order := make([]string, 0, len(history))

	for _, round := range history {
		if !round.Verdict.PromptWasDecisive {
			continue
		}
		name := round.BestResult().VariantName
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	best := ""
	bestCount := 0
	for _, name := range order {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// dedupeLearnings flattens improvement lists across all rounds with set
// semantics, keeping first-occurrence order.
func dedupeLearnings(history []core.RoundRecord) []string {
	seen := make(map[string]struct{})
	learnings := make([]string, 0)

	for _, round := range history {
		for _, item := range round.Verdict.Improvements {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			learnings = append(learnings, item)
		}
	}
	return learnings
}

// preview bounds s to the first previewLimit characters, marking the cut.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + truncationMarker
}

// displayName turns a raw strategy name into prose ("step-by-step" becomes
// "Step By Step"). Identity comparisons always use raw names; this is
// display only.
func displayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
