package gateway

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/logging"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = anthropic.ModelClaudeSonnet4_5_20250929

const defaultMaxTokens = 8192

// AnthropicGateway runs prompts through Anthropic's Messages API.
type AnthropicGateway struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic creates a gateway backed by the Anthropic Messages API. An
// empty apiKey falls back to the ANTHROPIC_API_KEY environment variable, and
// an empty model falls back to DefaultAnthropicModel.
func NewAnthropic(apiKey string, model string) (*AnthropicGateway, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.InvalidInput, "API key is required")
	}

	if model == "" {
		model = string(DefaultAnthropicModel)
	}
	if !isValidAnthropicModel(model) {
		return nil, errs.WithFields(
			errs.New(errs.InvalidInput, "unsupported Anthropic model"),
			errs.Fields{"model": model})
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicGateway{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
	}, nil
}

// Invoke implements core.Gateway.
func (g *AnthropicGateway) Invoke(ctx context.Context, prompt string, description string) (*core.AgentResponse, error) {
	logger := logging.GetLogger()
	logger.Debug(ctx, "anthropic request (%s)", description)

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: g.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens: g.maxTokens,
	})

	if err != nil {
		if ctxErr := errs.CheckContext(ctx, "anthropic request"); ctxErr != nil {
			return nil, ctxErr
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return nil, errs.WithFields(
			errs.Wrap(err, errs.GatewayInvocationFailed, "failed to generate response"),
			errs.Fields{
				"model":      string(g.model),
				"max_tokens": g.maxTokens,
			})
	}

	if message == nil {
		return nil, errs.New(errs.GatewayInvocationFailed, "received nil response from Anthropic API")
	}

	if len(message.Content) == 0 {
		return nil, errs.New(errs.GatewayInvocationFailed, "received empty content from Anthropic API")
	}

	// Extract text from response using union type methods.
	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	usage := &core.TokenUsage{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
		TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}

	logger.Debug(ctx, "anthropic response: %d prompt tokens, %d completion tokens", message.Usage.InputTokens, message.Usage.OutputTokens)

	return &core.AgentResponse{OutputText: responseText, Usage: usage}, nil
}

// isValidAnthropicModel checks if the model is a plausible Anthropic model.
func isValidAnthropicModel(model string) bool {
	validPrefixes := []string{
		"claude-3",
		"claude-4",
		"claude-haiku",
		"claude-sonnet",
		"claude-opus",
	}

	for _, prefix := range validPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
