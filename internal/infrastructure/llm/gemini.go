package llm

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements ports.Completer with the Gemini API.
type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
	temperature  float32
	maxTokens    int32
}

var _ ports.Completer = (*GeminiClient)(nil)

// NewGeminiClient creates the SDK client. No request is made until Complete.
func NewGeminiClient(ctx context.Context, cfg config.AnalysisConfig) (*GeminiClient, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		client:       client,
		model:        model,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		temperature:  cfg.Temperature,
		maxTokens:    int32(cfg.MaxTokens),
	}, nil
}

// Model reports the configured model name.
func (g *GeminiClient) Model() string {
	return g.model
}

// Complete sends a single-turn request asking for a JSON reply.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	if g.maxTokens > 0 {
		genConfig.MaxOutputTokens = g.maxTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, genConfig)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}
	if out.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return out.String(), nil
}
