// Package sentiment is the deterministic text scorer and keyword extractor
// used when no AI analysis is available, and as a second opinion next to it.
package sentiment

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
)

// Scorer returns the polarity of text in [-1, 1].
type Scorer interface {
	Polarity(text string) (float64, error)
}

// Lexicon scores text by averaging the polarity of the known words it contains.
// A negator before a word flips and halves it; an intensifier multiplies it.
type Lexicon struct {
	words map[string]float64
}

var _ Scorer = Lexicon{}

// NewLexicon returns the built-in word list scorer.
func NewLexicon() Lexicon {
	return Lexicon{words: defaultLexicon}
}

var tokenExpr = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)

// Polarity implements Scorer.
func (l Lexicon) Polarity(text string) (float64, error) {
	tokens := tokenExpr.FindAllString(strings.ToLower(text), -1)

	var (
		sum     float64
		matched int
	)
	for i, token := range tokens {
		value, ok := l.words[token]
		if !ok {
			continue
		}
		if i > 0 {
			if _, ok := intensifiers[tokens[i-1]]; ok {
				value *= intensifyFactor
			}
		}
		if negatedAt(tokens, i) {
			value *= negationFactor
		}
		sum += value
		matched++
	}

	if matched == 0 {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, sum/float64(matched))), nil
}

// negatedAt looks back up to two tokens ("not good", "not very good").
func negatedAt(tokens []string, i int) bool {
	for back := 1; back <= 2 && i-back >= 0; back++ {
		if _, ok := negators[tokens[i-back]]; ok {
			return true
		}
	}
	return false
}

// Score is a labelled polarity.
type Score struct {
	Label    domain.Sentiment `json:"label"`
	Polarity float64          `json:"polarity"`
}

var neutral = Score{Label: domain.SentimentNeutral}

// Engine guards a Scorer: malformed input, errors and panics all yield a
// neutral score instead of failing the caller.
type Engine struct {
	scorer Scorer
	logger *slog.Logger
}

// NewEngine wraps scorer; a nil scorer selects the built-in lexicon.
func NewEngine(scorer Scorer, logger *slog.Logger) *Engine {
	if scorer == nil {
		scorer = NewLexicon()
	}
	return &Engine{scorer: scorer, logger: logger}
}

// Score labels text. It never fails.
func (e *Engine) Score(text string) (result Score) {
	if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
		return neutral
	}

	defer func() {
		if r := recover(); r != nil {
			e.debug("scorer panicked", "panic", fmt.Sprint(r))
			result = neutral
		}
	}()

	polarity, err := e.scorer.Polarity(text)
	if err != nil {
		e.debug("scorer failed", "error", errors.Wrap(err, "score text"))
		return neutral
	}
	if math.IsNaN(polarity) || math.IsInf(polarity, 0) {
		return neutral
	}
	polarity = math.Max(-1, math.Min(1, polarity))
	return Score{Label: domain.LabelForPolarity(polarity), Polarity: polarity}
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

var defaultEngine = NewEngine(nil, nil)

// ScoreText labels text with the built-in lexicon.
func ScoreText(text string) (domain.Sentiment, float64) {
	s := defaultEngine.Score(text)
	return s.Label, s.Polarity
}
