// Package textsearch decorates disclosure text blocks for display:
// case-insensitive keyword highlighting and rune-safe preview truncation.
package textsearch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// PreviewBudget is the default character budget for on-screen
	// previews. Exports are always verbatim.
	PreviewBudget = 15000

	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps every case-insensitive occurrence of keyword in the
// text with <mark> tags, preserving the original casing of the matched
// spans and leaving the rest of the text untouched. Empty keywords
// return the text unchanged.
func Highlight(text, keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || text == "" {
		return text
	}

	// Folding is done rune by rune against the original text so byte
	// offsets stay valid even where a full-string lowering would change
	// the byte length (e.g. U+0130).
	key := []rune(keyword)
	for i, r := range key {
		key[i] = unicode.ToLower(r)
	}

	var b strings.Builder
	b.Grow(len(text) + 2*(len(markOpen)+len(markClose)))
	pos, last := 0, 0
	for pos < len(text) {
		end, ok := matchAt(text, pos, key)
		if !ok {
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			continue
		}
		b.WriteString(text[last:pos])
		b.WriteString(markOpen)
		b.WriteString(text[pos:end])
		b.WriteString(markClose)
		pos, last = end, end
	}
	b.WriteString(text[last:])
	return b.String()
}

// matchAt reports whether the lowered keyword runes occur at byte offset
// pos of text, and the byte offset just past the match.
func matchAt(text string, pos int, key []rune) (int, bool) {
	for _, k := range key {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if size == 0 || unicode.ToLower(r) != k {
			return 0, false
		}
		pos += size
	}
	return pos, true
}

// Preview holds the truncated display form of a text block alongside the
// full length so the view can report how much was cut.
type Preview struct {
	Text      string `json:"text"`
	Length    int    `json:"length"`
	Truncated bool   `json:"truncated"`
}

// Truncate cuts text to at most budget runes, never splitting a rune.
// A budget of zero or less applies PreviewBudget.
func Truncate(text string, budget int) Preview {
	if budget <= 0 {
		budget = PreviewBudget
	}
	length := utf8.RuneCountInString(text)
	if length <= budget {
		return Preview{Text: text, Length: length}
	}

	n := 0
	for i := range text {
		if n == budget {
			return Preview{Text: text[:i], Length: length, Truncated: true}
		}
		n++
	}
	return Preview{Text: text, Length: length}
}
