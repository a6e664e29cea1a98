// Package insight turns collected items into an AnalysisResult through an AI
// model, degrading to a templated result whenever the model cannot be used.
package insight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/ports"
)

// ErrNotConfigured is the fallback reason when no model is wired.
var ErrNotConfigured = errors.New("AI service not configured")

// DefaultTopics follow the subject in a fallback result.
var DefaultTopics = []string{"Technology", "Markets"}

// Outcome is the result of one summarization. Err carries the reason for a
// fallback and is nil for a model result.
type Outcome struct {
	Result domain.AnalysisResult
	Source domain.AnalysisSource
	Err    error
}

// Fallback reports whether the result is the templated one.
func (o Outcome) Fallback() bool {
	return o.Source.Mode == domain.ModeFallback
}

// Engine asks the completer for an analysis exactly once per call.
type Engine struct {
	completer ports.Completer
	subject   string
	logger    *slog.Logger
}

// NewEngine builds an engine. completer may be nil.
func NewEngine(completer ports.Completer, subject string, logger *slog.Logger) *Engine {
	return &Engine{completer: completer, subject: subject, logger: logger}
}

// Summarize never fails: any problem with the model yields the fallback result
// with the reason in Outcome.Err.
func (e *Engine) Summarize(ctx context.Context, articles []domain.Article, posts []domain.SocialPost, market domain.MarketSnapshot) Outcome {
	if e.completer == nil {
		return e.fallback(articles, posts, ErrNotConfigured)
	}

	result, err := e.ask(ctx, BuildPrompt(e.subject, articles, posts, market))
	if err != nil {
		e.warn("ai analysis failed, using fallback", "model", e.completer.Model(), "error", err)
		return e.fallback(articles, posts, err)
	}

	e.info("ai analysis completed", "model", e.completer.Model(), "sentiment", result.OverallSentiment, "insights", len(result.KeyInsights))
	return Outcome{
		Result: result,
		Source: domain.AnalysisSource{Mode: domain.ModeAI, Model: e.completer.Model()},
	}
}

func (e *Engine) ask(ctx context.Context, prompt string) (result domain.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("completer panic: %v", r)
		}
	}()

	reply, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return domain.AnalysisResult{}, errors.Wrap(err, "complete")
	}
	return ParseResult(reply)
}

func (e *Engine) fallback(articles []domain.Article, posts []domain.SocialPost, cause error) Outcome {
	return Outcome{
		Result: Fallback(e.subject, len(articles), len(posts), cause),
		Source: domain.AnalysisSource{Mode: domain.ModeFallback},
		Err:    cause,
	}
}

// Fallback is the templated analysis used when no model result is available.
func Fallback(subject string, articleCount, postCount int, cause error) domain.AnalysisResult {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	topics := append([]string{subject}, DefaultTopics...)

	return domain.AnalysisResult{
		OverallSentiment: domain.SentimentNeutral,
		SentimentScore:   domain.NeutralScore,
		KeyInsights: []string{
			fmt.Sprintf("%d news articles collected", articleCount),
			fmt.Sprintf("%d community posts analyzed", postCount),
			"AI analysis unavailable, showing basic analysis",
		},
		ExecutiveSummary: fmt.Sprintf("Collected %d news articles and %d community posts about %s.", articleCount, postCount, subject),
		DetailedAnalysis: "A detailed analysis could not be produced because the AI service was unavailable.",
		MarketOutlook:    "Outlook unavailable due to insufficient analysis.",
		TopTopics:        topics,
		RiskFactors:      []string{"AI analysis unavailable: " + reason},
		Opportunities:    []string{"Enable AI analysis for deeper insights"},
	}.Normalize()
}

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
