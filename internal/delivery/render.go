// Package delivery renders a report into Telegram HTML, splits it under the
// message size ceiling and sends the parts with retry.
package delivery

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"DailyBrief/internal/domain"
)

// Per-section item limits.
const (
	maxInsights      = 5
	maxTopics        = 8
	maxOpportunities = 3
	maxRisks         = 3
	maxLinks         = domain.TopItems
	maxTitleRunes    = 200
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Render formats the report. Sections are separated by exactly one blank
// line and a section whose source field is empty is left out entirely.
func Render(r domain.Report) string {
	a := r.Analysis.Normalize()

	var sections []string
	add := func(lines ...string) {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	add(header(r)...)

	if r.Market.HasPrice() {
		add(marketLines(r.Market)...)
	}

	add(sentimentLines(r, a)...)

	if a.ExecutiveSummary != "" {
		add("📊 <b>Executive summary</b>", text(a.ExecutiveSummary))
	}

	if len(a.KeyInsights) > 0 {
		lines := []string{"💡 <b>Key insights</b>"}
		for i, insight := range first(a.KeyInsights, maxInsights) {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, text(insight)))
		}
		add(lines...)
	}

	if len(a.TopTopics) > 0 {
		tags := make([]string, 0, maxTopics)
		for _, topic := range first(a.TopTopics, maxTopics) {
			tags = append(tags, "#"+text(strings.Join(strings.Fields(topic), "_")))
		}
		add("🔑 <b>Topics</b>", strings.Join(tags, " "))
	}

	if a.MarketOutlook != "" {
		add("🔮 <b>Outlook</b>", text(a.MarketOutlook))
	}

	if len(a.Opportunities) > 0 {
		add(bulleted("✅ <b>Opportunities</b>", first(a.Opportunities, maxOpportunities))...)
	}

	if len(a.RiskFactors) > 0 {
		add(bulleted("⚠️ <b>Risks</b>", first(a.RiskFactors, maxRisks))...)
	}

	if a.DetailedAnalysis != "" {
		add("📝 <b>Detailed analysis</b>", text(a.DetailedAnalysis))
	}

	if len(r.TopArticles) > 0 {
		lines := []string{"📰 <b>Top headlines</b>"}
		for i, article := range first(r.TopArticles, maxLinks) {
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, link(article.Title, article.URL), text(article.Source)))
		}
		add(lines...)
	}

	if len(r.TopPosts) > 0 {
		lines := []string{"💬 <b>Community discussions</b>"}
		for i, post := range first(r.TopPosts, maxLinks) {
			lines = append(lines, fmt.Sprintf("%d. %s (%s, score %d)", i+1, link(post.Title, post.URL), text(post.Platform), post.Score))
		}
		add(lines...)
	}

	add("📈 <b>Data sources</b>", fmt.Sprintf("News: %d | Community: %d", r.Counts.Articles, r.Counts.Posts))

	return strings.Join(sections, "\n\n")
}

func header(r domain.Report) []string {
	subject := r.Subject
	if subject == "" {
		subject = "Market"
	}
	lines := []string{
		fmt.Sprintf("🍎 <b>%s daily report</b>", text(subject)),
		"📅 " + text(r.Date),
	}
	switch r.Source.Mode {
	case domain.ModeAI:
		model := r.Source.Model
		if model == "" {
			model = "AI model"
		}
		lines = append(lines, "🤖 <i>Analysis by "+text(model)+"</i>")
	case domain.ModeFallback:
		lines = append(lines, "🤖 <i>Basic analysis (AI unavailable)</i>")
	case domain.ModeLexicon:
		lines = append(lines, "🤖 <i>Lexicon analysis</i>")
	}
	return lines
}

func marketLines(m domain.MarketSnapshot) []string {
	arrow := "➡️"
	sign := ""
	switch {
	case m.ChangePercent > 0:
		arrow, sign = "📈", "+"
	case m.ChangePercent < 0:
		arrow = "📉"
	}
	lines := []string{
		"💰 <b>Market</b>",
		fmt.Sprintf("%s: $%.2f (%s%.2f%% %s)", text(m.Symbol), m.CurrentPrice, sign, m.ChangePercent, arrow),
		"5-day trend: " + text(string(m.Trend)),
	}
	if m.Low52Week > 0 && m.High52Week > 0 {
		lines = append(lines, fmt.Sprintf("52-week range: $%.2f – $%.2f", m.Low52Week, m.High52Week))
	}
	return lines
}

func sentimentLines(r domain.Report, a domain.AnalysisResult) []string {
	emoji := "😐"
	switch a.OverallSentiment {
	case domain.SentimentPositive:
		emoji = "😊"
	case domain.SentimentNegative:
		emoji = "😟"
	}
	lines := []string{
		emoji + " <b>Sentiment</b>",
		fmt.Sprintf("%s (%.2f/1.0)", a.OverallSentiment, a.SentimentScore),
	}
	s := r.Sentiment
	if r.Source.Mode != domain.ModeLexicon && s.Positive+s.Neutral+s.Negative > 0 {
		lines = append(lines, fmt.Sprintf("Headline tone: %s (%+.2f) | %d positive, %d neutral, %d negative",
			s.Label, s.Polarity, s.Positive, s.Neutral, s.Negative))
	}
	return lines
}

func bulleted(title string, items []string) []string {
	lines := []string{title}
	for _, item := range items {
		lines = append(lines, "• "+text(item))
	}
	return lines
}

func link(title, url string) string {
	title = domain.Truncate(title, maxTitleRunes)
	if url == "" {
		return text(title)
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), text(title))
}

// text escapes dynamic content and folds blank lines so free text never
// introduces a section break.
func text(s string) string {
	return html.EscapeString(blankLines.ReplaceAllString(strings.TrimSpace(s), "\n"))
}

func first[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
