// Package report builds the canonical daily report from the analysis inputs.
package report

import (
	"fmt"
	"strings"
	"time"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/sentiment"
)

// Input is everything the assembler needs. Exactly one of Analysis and Lexicon
// is normally set; when Analysis is nil the lexicon summary is converted.
type Input struct {
	Subject  string
	Symbol   string
	Now      time.Time
	Market   domain.MarketSnapshot
	Articles []domain.Article
	Posts    []domain.SocialPost
	Analysis *domain.AnalysisResult
	Source   domain.AnalysisSource
	Lexicon  sentiment.Summary
}

// Assemble is pure: the same input always yields the same report.
func Assemble(in Input) domain.Report {
	if in.Lexicon.Label == "" {
		in.Lexicon.Label = domain.SentimentNeutral
	}
	analysis, source := resolveAnalysis(in)

	keywords := in.Lexicon.Keywords
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	market := in.Market
	if market.Symbol == "" {
		market.Symbol = in.Symbol
	}
	if market.Trend == "" {
		market.Trend = domain.TrendInsufficientData
	}

	return domain.Report{
		Date:        in.Now.Format(domain.DateLayout),
		Subject:     in.Subject,
		Market:      market,
		Analysis:    analysis.Normalize(),
		Source:      source,
		Sentiment:   in.Lexicon.Breakdown(),
		Keywords:    append([]string{}, keywords...),
		TopArticles: topArticles(in.Articles),
		TopPosts:    topPosts(in.Posts),
		Counts:      domain.Counts{Articles: len(in.Articles), Posts: len(in.Posts)},
		GeneratedAt: in.Now,
	}
}

const maxKeywords = 10

func resolveAnalysis(in Input) (domain.AnalysisResult, domain.AnalysisSource) {
	if in.Analysis != nil {
		source := in.Source
		if source.Mode == "" {
			source.Mode = domain.ModeAI
		}
		return *in.Analysis, source
	}
	return FromSentiment(in.Subject, in.Lexicon, in.Articles, in.Posts), domain.AnalysisSource{Mode: domain.ModeLexicon}
}

// FromSentiment expresses a lexicon summary as an AnalysisResult so delivery
// only ever renders one representation.
func FromSentiment(subject string, summary sentiment.Summary, articles []domain.Article, posts []domain.SocialPost) domain.AnalysisResult {
	insights := []string{
		fmt.Sprintf("%d news articles and %d community posts collected", len(articles), len(posts)),
		fmt.Sprintf("%d positive, %d neutral and %d negative items", summary.Positive, summary.Neutral, summary.Negative),
	}
	if len(summary.Keywords) > 0 {
		insights = append(insights, "Most mentioned: "+joinFirst(summary.Keywords, 5))
	}

	executive := fmt.Sprintf("Overall %s tone across %d scored items about %s.", summary.Label, summary.Items, subject)
	if len(articles) > 0 {
		executive = fmt.Sprintf("Top story: %s. %s", domain.Truncate(articles[0].Title, 120), executive)
	}

	topics := summary.Keywords
	if len(topics) > 5 {
		topics = topics[:5]
	}

	return domain.AnalysisResult{
		OverallSentiment: summary.Label,
		SentimentScore:   domain.ScoreFromPolarity(summary.Mean),
		KeyInsights:      insights,
		ExecutiveSummary: executive,
		TopTopics:        append([]string{}, topics...),
	}.Normalize()
}

func topArticles(articles []domain.Article) []domain.Article {
	n := min(len(articles), domain.TopItems)
	return append(make([]domain.Article, 0, n), articles[:n]...)
}

func topPosts(posts []domain.SocialPost) []domain.SocialPost {
	n := min(len(posts), domain.TopItems)
	return append(make([]domain.SocialPost, 0, n), posts[:n]...)
}

func joinFirst(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}
