package delivery

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is the Telegram ceiling for one message.
const MaxMessageRunes = 4096

const paragraphSep = "\n\n"

// Split cuts text into chunks of at most limit runes. Paragraphs (separated by
// a blank line) are packed greedily and kept whole, so joining the chunks with
// "\n\n" gives back text. Only a paragraph that alone exceeds limit is cut,
// first on line breaks and then, for an overlong line, on rune boundaries.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageRunes
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
		open    bool
	)
	flush := func() {
		if open {
			chunks = append(chunks, current.String())
			current.Reset()
			size, open = 0, false
		}
	}

	for _, paragraph := range strings.Split(text, paragraphSep) {
		n := utf8.RuneCountInString(paragraph)
		if n > limit {
			flush()
			chunks = append(chunks, splitOversized(paragraph, limit)...)
			continue
		}
		if open && size+len([]rune(paragraphSep))+n > limit {
			flush()
		}
		if open {
			current.WriteString(paragraphSep)
			size += len([]rune(paragraphSep))
		}
		current.WriteString(paragraph)
		size += n
		open = true
	}
	flush()

	return chunks
}

func splitOversized(paragraph string, limit int) []string {
	var (
		chunks  []string
		current []string
		size    int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current, size = nil, 0
		}
	}
	for _, line := range strings.Split(paragraph, "\n") {
		n := utf8.RuneCountInString(line)
		if n > limit {
			room := 0
			if len(current) > 0 {
				room = limit - size - 1
			}
			pieces := splitRunes(line, limit, room)
			if room > 0 && len(pieces) > 0 && pieces[0] != "" {
				current = append(current, pieces[0])
				pieces = pieces[1:]
			}
			flush()
			for _, piece := range pieces {
				if piece != "" {
					chunks = append(chunks, piece)
				}
			}
			continue
		}
		if len(current) > 0 && size+1+n > limit {
			flush()
		}
		if len(current) > 0 {
			size++
		}
		current = append(current, line)
		size += n
	}
	flush()
	return chunks
}

// splitRunes cuts an overlong line into pieces of at most limit runes; the
// first piece is limited to first runes when first > 0 and may then be empty.
// A cut never lands inside an HTML entity, a tag or an element that is still
// open, unless the element alone is longer than the piece.
func splitRunes(line string, limit, first int) []string {
	runes := []rune(line)
	chunks := make([]string, 0, len(runes)/limit+2)

	if first > 0 && len(runes) > first {
		cut := safeCut(runes, first)
		if cut > 0 {
			chunks = append(chunks, string(runes[:cut]))
			runes = runes[cut:]
		} else {
			chunks = append(chunks, "")
		}
	}

	for len(runes) > limit {
		cut := safeCut(runes, limit)
		if cut == 0 {
			cut = limit
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// safeCut returns the largest cut point <= budget that does not split markup,
// or 0 when every such point is inside markup.
func safeCut(runes []rune, budget int) int {
	cut := budget
	depth := 0
	openAt := -1
	tagAt := -1
	entityAt := -1
	for i, r := range runes[:budget] {
		switch r {
		case '<':
			tagAt = i
		case '>':
			if tagAt >= 0 {
				if tagAt+1 < len(runes) && runes[tagAt+1] == '/' {
					if depth > 0 {
						depth--
					}
				} else if i > 0 && runes[i-1] != '/' {
					if depth == 0 {
						openAt = tagAt
					}
					depth++
				}
				tagAt = -1
			}
		case '&':
			entityAt = i
		case ';':
			entityAt = -1
		}
	}
	if entityAt >= 0 && entityAt < cut {
		cut = entityAt
	}
	if tagAt >= 0 && tagAt < cut {
		cut = tagAt
	}
	if depth > 0 && openAt >= 0 && openAt < cut {
		cut = openAt
	}
	return cut
}
