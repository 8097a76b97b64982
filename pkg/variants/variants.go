// Package variants defines the prompt phrasing strategies the optimization
// loop searches over: a fixed seed population and the evolution step that
// rewrites non-winning strategies between rounds.
package variants

import (
	"fmt"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

// Seed returns the fixed starting population: five phrasing strategies in a
// stable order. Index identity within a round comes from this order.
func Seed() []*core.Variant {
	return []*core.Variant{
		core.NewVariant("direct", renderDirect),
		core.NewVariant("step-by-step", renderStepByStep),
		core.NewVariant("expert-persona", renderExpertPersona),
		core.NewVariant("structured-output", renderStructuredOutput),
		core.NewVariant("self-critique", renderSelfCritique),
	}
}

func withContext(prompt, context string) string {
	if context == "" {
		return prompt
	}
	return prompt + "\n\nRelevant context:\n" + context
}

func renderDirect(task, context string) string {
	return withContext("Complete the following task:\n\n"+task, context)
}

func renderStepByStep(task, context string) string {
	return withContext(fmt.Sprintf(`Work through the following task step by step.

First break it into the smallest reasonable steps, then complete each step in order, showing your work.

Task: %s`, task), context)
}

func renderExpertPersona(task, context string) string {
	return withContext(fmt.Sprintf(`You are a seasoned expert in the domain of this task, with years of hands-on experience.

Apply that expertise to complete the task below to a professional standard.

Task: %s`, task), context)
}

func renderStructuredOutput(task, context string) string {
	return withContext(fmt.Sprintf(`Complete the following task and organize your answer into clearly labeled sections, using headings and bullet points where they help.

Task: %s`, task), context)
}

func renderSelfCritique(task, context string) string {
	return withContext(fmt.Sprintf(`Complete the following task. Draft a response first, critique your draft for gaps and errors, then present only the improved final version.

Task: %s`, task), context)
}
