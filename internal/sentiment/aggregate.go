package sentiment

import (
	"strings"

	"DailyBrief/internal/domain"
)

// BatchSize is how many articles and how many posts are scored per run.
const BatchSize = 10

// Summary aggregates the scores of a batch of items.
type Summary struct {
	Label    domain.Sentiment `json:"overall"`
	Mean     float64          `json:"score"`
	Positive int              `json:"positive_count"`
	Neutral  int              `json:"neutral_count"`
	Negative int              `json:"negative_count"`
	Items    int              `json:"items"`
	Keywords []string         `json:"keywords"`
}

// Aggregate counts labels and averages polarity. An empty batch is neutral.
func Aggregate(scores []Score) Summary {
	summary := Summary{Label: domain.SentimentNeutral, Keywords: []string{}}
	if len(scores) == 0 {
		return summary
	}

	var total float64
	for _, s := range scores {
		total += s.Polarity
		switch s.Label {
		case domain.SentimentPositive:
			summary.Positive++
		case domain.SentimentNegative:
			summary.Negative++
		default:
			summary.Neutral++
		}
	}
	summary.Items = len(scores)
	summary.Mean = total / float64(len(scores))
	summary.Label = domain.LabelForPolarity(summary.Mean)
	return summary
}

// Analyze scores the leading articles and posts and extracts keywords from
// every title.
func (e *Engine) Analyze(articles []domain.Article, posts []domain.SocialPost) Summary {
	scores := make([]Score, 0, BatchSize*2)
	for i, article := range articles {
		if i == BatchSize {
			break
		}
		scores = append(scores, e.Score(article.Title+" "+article.Summary))
	}
	for i, post := range posts {
		if i == BatchSize {
			break
		}
		scores = append(scores, e.Score(post.Title+" "+post.Text))
	}

	titles := make([]string, 0, len(articles)+len(posts))
	for _, article := range articles {
		titles = append(titles, article.Title)
	}
	for _, post := range posts {
		titles = append(titles, post.Title)
	}

	summary := Aggregate(scores)
	summary.Keywords = ExtractKeywords(strings.Join(titles, " "), nil, DefaultMaxKeywords)
	return summary
}

// Breakdown converts the summary to the report's lexicon section.
func (s Summary) Breakdown() domain.SentimentBreakdown {
	return domain.SentimentBreakdown{
		Label:    s.Label,
		Polarity: s.Mean,
		Positive: s.Positive,
		Neutral:  s.Neutral,
		Negative: s.Negative,
	}
}
