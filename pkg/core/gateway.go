package core

import (
	"context"
)

// TokenUsage tracks token consumption for a single gateway invocation.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AgentResponse is the result of one agent invocation.
type AgentResponse struct {
	// OutputText is the agent's textual output, verbatim.
	OutputText string
	// Usage is optional token accounting; backends that cannot report
	// usage leave it nil.
	Usage *TokenUsage
}

// Gateway is the external capability that executes a prompt and returns
// text. The optimization loop depends only on this contract; it never
// assumes anything about the model or mechanism behind it.
//
// Invoke must honor ctx for its own deadlines but is otherwise free to run
// as long as it needs: the loop never aborts an in-flight invocation (see
// optimizer.Loop for the cancellation model). The description is a short
// human-readable label for the invocation, suitable for logs or host UIs.
type Gateway interface {
	Invoke(ctx context.Context, prompt string, description string) (*AgentResponse, error)
}

// GatewayFunc adapts a plain function to the Gateway interface.
type GatewayFunc func(ctx context.Context, prompt string, description string) (*AgentResponse, error)

// Invoke implements Gateway.
func (f GatewayFunc) Invoke(ctx context.Context, prompt string, description string) (*AgentResponse, error) {
	return f(ctx, prompt, description)
}
