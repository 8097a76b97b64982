package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

func TestNewAnthropicRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	g, err := NewAnthropic("", "")

	assert.Nil(t, g)
	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.Code(err))
}

func TestNewAnthropicFallsBackToEnvKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	g, err := NewAnthropic("", "")

	require.NoError(t, err)
	assert.Equal(t, DefaultAnthropicModel, g.model)
}

func TestNewAnthropicRejectsUnknownModel(t *testing.T) {
	g, err := NewAnthropic("test-key", "gpt-4o")

	assert.Nil(t, g)
	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.Code(err))
	assert.Contains(t, err.Error(), "unsupported Anthropic model")
}

func TestIsValidAnthropicModel(t *testing.T) {
	tests := []struct {
		model string
		valid bool
	}{
		{model: "claude-3-haiku-20240307", valid: true},
		{model: "claude-sonnet-4-5", valid: true},
		{model: "claude-opus-4-1", valid: true},
		{model: "claude-haiku-4-5", valid: true},
		{model: "gpt-4o", valid: false},
		{model: "gemini-pro", valid: false},
		{model: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidAnthropicModel(tt.model))
		})
	}
}
