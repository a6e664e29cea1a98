package domain

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Sentiment is the three-way label shared by the lexicon scorer and AI results.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// PolarityThreshold separates neutral from positive/negative polarity in [-1, 1].
const PolarityThreshold = 0.1

// LabelForPolarity maps a polarity in [-1, 1] to a label.
func LabelForPolarity(polarity float64) Sentiment {
	switch {
	case polarity > PolarityThreshold:
		return SentimentPositive
	case polarity < -PolarityThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Length bounds for the free-text fields and list items of an AnalysisResult,
// in runes.
const (
	MaxExecutiveSummaryRunes = 600
	MaxDetailedAnalysisRunes = 1500
	MaxMarketOutlookRunes    = 300
	MaxListItemRunes         = 300
	MaxTopicRunes            = 60
)

// NeutralScore is the midpoint of the [0, 1] sentiment score range.
const NeutralScore = 0.5

// AnalysisResult is the closed insight schema. SentimentScore is always kept in
// [0, 1] where 0.5 is neutral; polarity-scale values are converted by Normalize.
type AnalysisResult struct {
	OverallSentiment Sentiment `json:"overall_sentiment"`
	SentimentScore   float64   `json:"sentiment_score"`
	KeyInsights      []string  `json:"key_insights"`
	ExecutiveSummary string    `json:"executive_summary"`
	DetailedAnalysis string    `json:"detailed_analysis"`
	MarketOutlook    string    `json:"market_outlook"`
	TopTopics        []string  `json:"top_topics"`
	RiskFactors      []string  `json:"risk_factors"`
	Opportunities    []string  `json:"opportunities"`
}

// ScoreFromPolarity converts a polarity in [-1, 1] to the [0, 1] score range.
func ScoreFromPolarity(polarity float64) float64 {
	return clamp((polarity+1)/2, 0, 1)
}

// Normalize returns a copy with every field in its canonical form: labels are
// one of the three sentiments, the score sits in [0, 1], lists are non-nil and
// free of blank entries and all text is trimmed to its bound. A result with
// neither label nor score is neutral at the midpoint.
func (a AnalysisResult) Normalize() AnalysisResult {
	out := a
	if strings.TrimSpace(string(a.OverallSentiment)) == "" && a.SentimentScore == 0 {
		a.SentimentScore = NeutralScore
	}
	out.SentimentScore = normalizeScore(a.SentimentScore)
	out.OverallSentiment = normalizeLabel(a.OverallSentiment, out.SentimentScore)
	out.KeyInsights = cleanList(a.KeyInsights, MaxListItemRunes)
	out.TopTopics = cleanList(a.TopTopics, MaxTopicRunes)
	out.RiskFactors = cleanList(a.RiskFactors, MaxListItemRunes)
	out.Opportunities = cleanList(a.Opportunities, MaxListItemRunes)
	out.ExecutiveSummary = Truncate(strings.TrimSpace(a.ExecutiveSummary), MaxExecutiveSummaryRunes)
	out.DetailedAnalysis = Truncate(strings.TrimSpace(a.DetailedAnalysis), MaxDetailedAnalysisRunes)
	out.MarketOutlook = Truncate(strings.TrimSpace(a.MarketOutlook), MaxMarketOutlookRunes)
	return out
}

func normalizeScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return NeutralScore
	}
	if score < 0 {
		return ScoreFromPolarity(score)
	}
	return clamp(score, 0, 1)
}

func normalizeLabel(label Sentiment, score float64) Sentiment {
	switch strings.ToLower(strings.TrimSpace(string(label))) {
	case "positive", "bullish":
		return SentimentPositive
	case "negative", "bearish":
		return SentimentNegative
	case "neutral", "mixed":
		return SentimentNeutral
	}
	return LabelForPolarity(score*2 - 1)
}

func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, Truncate(item, limit))
	}
	return out
}

// Truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
