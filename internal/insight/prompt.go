package insight

import (
	"fmt"
	"strings"

	"DailyBrief/internal/domain"
)

// Prompt limits.
const (
	promptArticles = 10
	promptPosts    = 5
)

const schemaInstruction = `Respond with a single JSON object using exactly these keys:

{
  "overall_sentiment": "positive" | "neutral" | "negative",
  "sentiment_score": number between 0.0 (very negative) and 1.0 (very positive), 0.5 is neutral,
  "key_insights": ["insight", "insight", "insight"],
  "executive_summary": "overall summary, at most 600 characters",
  "detailed_analysis": "detailed analysis, at most 1500 characters",
  "market_outlook": "short-term outlook, at most 300 characters",
  "top_topics": ["topic", "topic", "topic"],
  "risk_factors": ["risk", "risk"],
  "opportunities": ["opportunity", "opportunity"]
}

Return JSON only, with no other text.`

// BuildPrompt renders the analyst request for the collected data.
func BuildPrompt(subject string, articles []domain.Article, posts []domain.SocialPost, market domain.MarketSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an equity analyst covering %s. Analyze the data below and write a concise daily report.\n\n", subject)

	b.WriteString("## Market\n")
	if market.HasPrice() {
		fmt.Fprintf(&b, "- Symbol: %s\n", market.Symbol)
		fmt.Fprintf(&b, "- Price: $%.2f\n", market.CurrentPrice)
		fmt.Fprintf(&b, "- Change: %+.2f (%+.2f%%)\n", market.Change, market.ChangePercent)
		fmt.Fprintf(&b, "- 5-day trend: %s\n", market.Trend)
	} else {
		b.WriteString("- No market data available\n")
	}

	fmt.Fprintf(&b, "\n## Latest news (%d)\n", len(articles))
	for i, article := range articles {
		if i == promptArticles {
			break
		}
		fmt.Fprintf(&b, "%d. %s (source: %s)\n", i+1, article.Title, article.Source)
	}

	fmt.Fprintf(&b, "\n## Community discussion (%d)\n", len(posts))
	for i, post := range posts {
		if i == promptPosts {
			break
		}
		fmt.Fprintf(&b, "%d. %s (score: %d)\n", i+1, post.Title, post.Score)
	}

	b.WriteString("\n")
	b.WriteString(schemaInstruction)
	return b.String()
}
