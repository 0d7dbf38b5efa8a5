package agentrunner

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicAnalysis answers one-shot analysis prompts with no tools.
// It backs the prompt classifier.
type AnthropicAnalysis struct {
	client *Client
}

// NewAnthropicAnalysis creates an analysis backend on the given client.
func NewAnthropicAnalysis(client *Client) *AnthropicAnalysis {
	return &AnthropicAnalysis{client: client}
}

// Analyze sends the prompt and returns the model's text response. The
// model argument overrides the client default when non-empty.
func (a *AnthropicAnalysis) Analyze(ctx context.Context, prompt string, model string) (string, error) {
	m := a.client.Model()
	if model != "" {
		m = anthropic.Model(model)
		if a.client.IsBedrock() {
			m = translateModelForBedrock(m)
		}
	}

	resp, err := a.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     m,
		MaxTokens: maxTokensPerTurn,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("analysis call: %w", err)
	}
	a.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var result string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result += variant.Text
		}
	}
	return result, nil
}
