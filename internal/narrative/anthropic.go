package narrative

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// jsonPrefill opens the assistant turn so the model continues a JSON object.
const jsonPrefill = "{"

// AnthropicProvider completes prompts with the Anthropic Messages API.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewAnthropicProvider creates an AnthropicProvider. Extra options are
// applied after the API key; tests use them to point at a local server.
//
// Precondition: apiKey and model must be non-empty; maxTokens >= 1.
func NewAnthropicProvider(apiKey, model string, temperature float64, maxTokens int, opts ...anthropicoption.RequestOption) *AnthropicProvider {
	all := append([]anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}, opts...)
	return &AnthropicProvider{
		client:      anthropic.NewClient(all...),
		model:       model,
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}
}

// Name implements Provider.
func (a *AnthropicProvider) Name() string { return "anthropic" }

// Complete implements Provider.
func (a *AnthropicProvider) Complete(ctx context.Context, p Prompt) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		System:      []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(jsonPrefill)),
		},
	})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: response has no text content")
	}
	out := b.String()
	if !strings.HasPrefix(strings.TrimSpace(out), jsonPrefill) {
		out = jsonPrefill + out
	}
	return out, nil
}
