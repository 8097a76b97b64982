package core

import (
	"time"
)

// RenderFunc produces prompt text for a task. Implementations must be pure:
// same task and context always yield the same prompt, with no dependence on
// prior rounds. Evolution replaces the function, never feeds state into it.
type RenderFunc func(task, context string) string

// Variant is a named prompt-phrasing strategy. Variants are immutable once
// constructed; the evolver builds new ones rather than modifying existing
// ones, so an unchanged winner can be carried across rounds by pointer
// identity.
type Variant struct {
	Name   string
	Render RenderFunc
}

// NewVariant constructs a variant from a name and render function.
func NewVariant(name string, render RenderFunc) *Variant {
	return &Variant{Name: name, Render: render}
}

// VariantResult records one variant's outcome for one round. It is immutable
// once produced and owned by the round record that holds it.
type VariantResult struct {
	// VariantName is the strategy name at the time of execution.
	VariantName string `json:"variant_name"`
	// PromptSent is the full prompt, including the disambiguation suffix.
	PromptSent string `json:"prompt_sent"`
	// OutputText is the agent's output, or the error text when the
	// invocation failed.
	OutputText string `json:"output_text"`
	// Succeeded is false when the invocation returned an error or panicked.
	Succeeded bool `json:"succeeded"`
	// Elapsed is how long the invocation took, informational only.
	Elapsed time.Duration `json:"elapsed"`
	// Usage is token accounting when the gateway reported it.
	Usage *TokenUsage `json:"usage,omitempty"`
}
