package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-sonnet-4-20250514"

// ClaudeClient implements ports.Completer with the Anthropic Messages API.
type ClaudeClient struct {
	client       anthropic.Client
	model        string
	systemPrompt string
	temperature  float32
	maxTokens    int64
}

var _ ports.Completer = (*ClaudeClient)(nil)

// NewClaudeClient builds the SDK client. SDK retries are disabled so one
// Complete is one request.
func NewClaudeClient(cfg config.AnalysisConfig) *ClaudeClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultClaudeModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &ClaudeClient{
		client:       anthropic.NewClient(opts...),
		model:        model,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		temperature:  cfg.Temperature,
		maxTokens:    maxTokens,
	}
}

// Model reports the configured model name.
func (c *ClaudeClient) Model() string {
	return c.model
}

// Complete sends the prompt as a single user message.
func (c *ClaudeClient) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{
			{Text: c.systemPrompt},
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "claude messages")
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("claude returned no text")
	}
	return out.String(), nil
}
