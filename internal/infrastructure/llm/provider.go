package llm

import (
	"context"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

// DefaultSystemPrompt frames every analysis request.
const DefaultSystemPrompt = "You are a careful financial news analyst. You always answer with a single valid JSON object and nothing else."

// New returns the completer for the configured provider.
func New(ctx context.Context, cfg config.AnalysisConfig) (ports.Completer, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg)
	case config.ProviderClaude:
		return NewClaudeClient(cfg), nil
	case config.ProviderOpenAI:
		return NewChatGPTClient(cfg), nil
	default:
		return nil, errors.Newf("unknown ai provider %q", cfg.Provider)
	}
}
