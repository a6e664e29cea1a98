package insight

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
)

// ErrMalformed marks a model reply that does not match the result schema.
var ErrMalformed = errors.New("malformed analysis reply")

// StripFences removes a surrounding markdown code fence, with or without a
// language tag.
func StripFences(reply string) string {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseResult decodes a model reply into a normalized AnalysisResult. Only a
// code fence is stripped; any other text around the object is malformed.
func ParseResult(reply string) (domain.AnalysisResult, error) {
	text := StripFences(reply)
	if text == "" {
		return domain.AnalysisResult{}, errors.Mark(errors.New("empty reply"), ErrMalformed)
	}
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return domain.AnalysisResult{}, errors.Mark(errors.New("reply is not a bare JSON object"), ErrMalformed)
	}

	var raw struct {
		domain.AnalysisResult
		SentimentScore *float64 `json:"sentiment_score"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.AnalysisResult{}, errors.Mark(errors.Wrap(err, "decode reply"), ErrMalformed)
	}
	if strings.TrimSpace(string(raw.OverallSentiment)) == "" {
		return domain.AnalysisResult{}, errors.Mark(errors.New("reply has no overall_sentiment"), ErrMalformed)
	}

	result := raw.AnalysisResult
	result.SentimentScore = domain.NeutralScore
	if raw.SentimentScore != nil {
		result.SentimentScore = *raw.SentimentScore
	}
	return result.Normalize(), nil
}
