package domain

import "time"

// DateLayout is the report date format.
const DateLayout = "2006-01-02"

// TopItems is how many raw articles and posts a report carries.
const TopItems = 5

// AnalysisMode tells which tier produced the analysis of a report.
type AnalysisMode string

const (
	ModeAI       AnalysisMode = "ai"
	ModeFallback AnalysisMode = "fallback"
	ModeLexicon  AnalysisMode = "lexicon"
)

// AnalysisSource describes where the analysis of a report came from.
type AnalysisSource struct {
	Mode  AnalysisMode `json:"mode"`
	Model string       `json:"model,omitempty"`
}

// SentimentBreakdown is the lexicon scorer's view of the raw items.
type SentimentBreakdown struct {
	Label    Sentiment `json:"label"`
	Polarity float64   `json:"polarity"`
	Positive int       `json:"positive_count"`
	Neutral  int       `json:"neutral_count"`
	Negative int       `json:"negative_count"`
}

// Counts are the full collected totals, not the truncated top lists.
type Counts struct {
	Articles int `json:"news_count"`
	Posts    int `json:"social_count"`
}

// Report is the canonical document consumed by delivery.
type Report struct {
	Date        string             `json:"date"`
	Subject     string             `json:"subject"`
	Market      MarketSnapshot     `json:"stock"`
	Analysis    AnalysisResult     `json:"analysis"`
	Source      AnalysisSource     `json:"analysis_source"`
	Sentiment   SentimentBreakdown `json:"lexicon_sentiment"`
	Keywords    []string           `json:"keywords"`
	TopArticles []Article          `json:"top_news"`
	TopPosts    []SocialPost       `json:"top_social"`
	Counts      Counts             `json:"counts"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// IsZero reports whether the report was never assembled.
func (r Report) IsZero() bool {
	return r.Date == "" && r.GeneratedAt.IsZero()
}
