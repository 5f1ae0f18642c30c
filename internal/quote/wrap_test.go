package quote

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monospace measures every rune as 10px.
func monospace(s string) int {
	return utf8.RuneCountInString(s) * 10
}

func texts(lines []LayoutLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		want     []string
	}{
		{"empty input", "", 100, []string{""}},
		{"only spaces", "    ", 100, []string{""}},
		{"fits on one line", "hello world", 1000, []string{"hello world"}},
		{"exact fit", "aaa bbb ccc", 70, []string{"aaa bbb", "ccc"}},
		{"one word per line", "aaa bbb ccc", 30, []string{"aaa", "bbb", "ccc"}},
		{"consecutive spaces collapse", "a  b   c", 100, []string{"a b c"}},
		{"leading and trailing spaces", "  a b  ", 100, []string{"a b"}},
		{"oversized token", "abcdefghij", 30, []string{"abc", "def", "ghi", "j"}},
		{"oversized token after a word", "hi abcdefghij", 30, []string{"hi", "abc", "def", "ghi", "j"}},
		{"chunk remainder continues", "abcd ef", 30, []string{"abc", "d", "ef"}},
		{"newline is a word separator", "one\ntwo", 100, []string{"one two"}},
		{"blank lines collapse", "one\n\ntwo", 100, []string{"one two"}},
		{"leading newline", "\nhello world", 100, []string{"hello world"}},
		{"crlf and tabs", "a\r\nb\tc", 100, []string{"a b c"}},
		{"only newlines", "\n\n\n", 100, []string{""}},
		{"multibyte runes split cleanly", "ááááá", 20, []string{"áá", "áá", "á"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.maxWidth, monospace)
			assert.Equal(t, tt.want, texts(got))
			for _, l := range got {
				assert.Equal(t, monospace(l.Text), l.Width, "width of %q", l.Text)
			}
		})
	}
}

func TestWrap_RejoinsToNormalizedInput(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog",
		"  stickers   are   just   tiny   pictures  ",
		"one two three four five six seven eight nine ten",
		"a",
		"one\n\ntwo",
		"\nhello world\n",
		"first line\nsecond line\r\n\n\tthird   line with more words\n",
	}

	for _, in := range inputs {
		for _, width := range []int{90, 150, 400} {
			lines := Wrap(in, width, monospace)
			assert.Equal(t, strings.Join(strings.Fields(in), " "), strings.Join(texts(lines), " "),
				"input %q at width %d", in, width)
		}
	}
}

func TestWrap_NeverExceedsBudget(t *testing.T) {
	in := "supercalifragilistic words mixed with a few short ones and antidisestablishmentarianism"
	for _, width := range []int{10, 25, 50, 80, 120} {
		for _, l := range Wrap(in, width, monospace) {
			if l.Width > width {
				require.Equal(t, 1, utf8.RuneCountInString(l.Text),
					"line %q is %dpx at budget %d", l.Text, l.Width, width)
			}
		}
	}
}

func TestWrap_SingleRuneWiderThanBudget(t *testing.T) {
	lines := Wrap("abc", 5, monospace)
	assert.Equal(t, []string{"a", "b", "c"}, texts(lines))
}
