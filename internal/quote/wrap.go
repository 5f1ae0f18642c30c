package quote

import "strings"

// LayoutLine is one wrapped line and its measured width in pixels.
type LayoutLine struct {
	Text  string
	Width int
}

// MeasureFunc returns the rendered width of s in pixels.
type MeasureFunc func(s string) int

// Wrap breaks text into lines no wider than maxWidth using greedy word
// wrapping. Any run of whitespace, newlines included, separates two words, so
// joining the lines with single spaces gives back the normalized input.
// Words wider than maxWidth on their own are split between characters.
//
// The result has at least one line; empty input gives a single empty line.
func Wrap(text string, maxWidth int, measure MeasureFunc) []LayoutLine {
	var (
		lines []LayoutLine
		cur   string
	)

	flush := func() {
		if cur != "" {
			lines = append(lines, LayoutLine{Text: cur, Width: measure(cur)})
		}
		cur = ""
	}

	for _, tok := range strings.Fields(text) {
		candidate := tok
		if cur != "" {
			candidate = cur + " " + tok
		}

		if measure(candidate) <= maxWidth {
			cur = candidate
			continue
		}

		flush()
		if measure(tok) <= maxWidth {
			cur = tok
			continue
		}

		chunks := splitRunes(tok, maxWidth, measure)
		for _, c := range chunks[:len(chunks)-1] {
			lines = append(lines, LayoutLine{Text: c, Width: measure(c)})
		}
		cur = chunks[len(chunks)-1]
	}
	flush()

	if len(lines) == 0 {
		lines = append(lines, LayoutLine{Text: "", Width: 0})
	}
	return lines
}

// splitRunes cuts tok into the longest prefixes that fit. A single rune that
// is wider than maxWidth still gets a chunk of its own.
func splitRunes(tok string, maxWidth int, measure MeasureFunc) []string {
	var (
		chunks []string
		b      strings.Builder
	)
	for _, r := range tok {
		if b.Len() > 0 && measure(b.String()+string(r)) > maxWidth {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
