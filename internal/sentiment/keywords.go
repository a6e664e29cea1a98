package sentiment

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxKeywords is how many keywords ExtractKeywords returns by default.
const DefaultMaxKeywords = 15

// MinKeywordLength is the shortest token counted as a keyword.
const MinKeywordLength = 4

// Stopwords are common words never reported as keywords.
var Stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "are": {}, "was": {}, "has": {}, "have": {}, "will": {},
	"can": {}, "but": {}, "not": {}, "you": {}, "all": {}, "new": {},
	"more": {}, "get": {}, "how": {}, "out": {}, "now": {}, "may": {},
}

var wordExpr = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// ExtractKeywords returns the most frequent words of corpus, most frequent
// first, ties broken by first occurrence. Words are ASCII letters only, at least
// MinKeywordLength long, and reported capitalized. max <= 0 selects
// DefaultMaxKeywords; a nil stopwords set selects Stopwords.
func ExtractKeywords(corpus string, stopwords map[string]struct{}, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeywords
	}
	if stopwords == nil {
		stopwords = Stopwords
	}

	type entry struct {
		word  string
		count int
		first int
	}

	counts := map[string]*entry{}
	var order []*entry
	for _, word := range wordExpr.FindAllString(corpus, -1) {
		word = strings.ToLower(word)
		if len(word) < MinKeywordLength {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		if e, ok := counts[word]; ok {
			e.count++
			continue
		}
		e := &entry{word: word, count: 1, first: len(order)}
		counts[word] = e
		order = append(order, e)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})

	if len(order) > max {
		order = order[:max]
	}
	keywords := make([]string, 0, len(order))
	for _, e := range order {
		keywords = append(keywords, capitalize(e.word))
	}
	return keywords
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
