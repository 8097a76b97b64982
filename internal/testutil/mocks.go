// Package testutil provides shared test doubles for the optimization loop's
// gateway seam.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

// MockGateway is a testify mock implementation of core.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Invoke(ctx context.Context, prompt string, description string) (*core.AgentResponse, error) {
	args := m.Called(ctx, prompt, description)
	if resp, ok := args.Get(0).(*core.AgentResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// NewTextGateway returns a gateway that always answers with the given text.
func NewTextGateway(text string) core.GatewayFunc {
	return func(ctx context.Context, prompt, description string) (*core.AgentResponse, error) {
		return &core.AgentResponse{OutputText: text}, nil
	}
}

// RecordingGateway captures every prompt it is invoked with and answers via
// a user-supplied reply function. It is safe for the concurrent fan-out
// paths exercised by loop tests.
type RecordingGateway struct {
	mu      sync.Mutex
	prompts []string
	descs   []string

	// Reply decides the response for each invocation; when nil, the gateway
	// echoes the prompt back.
	Reply func(prompt, description string) (*core.AgentResponse, error)
}

func (g *RecordingGateway) Invoke(ctx context.Context, prompt string, description string) (*core.AgentResponse, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.descs = append(g.descs, description)
	g.mu.Unlock()

	if g.Reply == nil {
		return &core.AgentResponse{OutputText: prompt}, nil
	}
	return g.Reply(prompt, description)
}

// Prompts returns a copy of the prompts seen so far, in arrival order.
func (g *RecordingGateway) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// Descriptions returns a copy of the invocation descriptions seen so far.
func (g *RecordingGateway) Descriptions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.descs...)
}
