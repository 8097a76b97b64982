package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVariant(t *testing.T) {
	v := NewVariant("direct", func(task, context string) string {
		return fmt.Sprintf("Task: %s\nContext: %s", task, context)
	})

	assert.Equal(t, "direct", v.Name)
	require.NotNil(t, v.Render)
	assert.Equal(t, "Task: sort a list\nContext: go slices", v.Render("sort a list", "go slices"))
}

func TestRenderFuncIsPure(t *testing.T) {
	v := NewVariant("direct", func(task, context string) string {
		return "Do this: " + task
	})

	first := v.Render("summarize", "")
	second := v.Render("summarize", "")
	assert.Equal(t, first, second)
}

func TestGatewayFunc(t *testing.T) {
	var gotPrompt, gotDesc string
	gw := GatewayFunc(func(ctx context.Context, prompt, description string) (*AgentResponse, error) {
		gotPrompt = prompt
		gotDesc = description
		return &AgentResponse{OutputText: "done"}, nil
	})

	resp, err := gw.Invoke(context.Background(), "do the thing", "round 1, variant direct")
	require.NoError(t, err)
	assert.Equal(t, "done", resp.OutputText)
	assert.Equal(t, "do the thing", gotPrompt)
	assert.Equal(t, "round 1, variant direct", gotDesc)
	assert.Nil(t, resp.Usage)
}
