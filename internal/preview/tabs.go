package preview

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// expandTabs replaces tabs with spaces up to the next tab stop. Columns are
// counted in display cells so wide runes keep later columns aligned.
func expandTabs(text string) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	col := 0
	for _, r := range text {
		switch r {
		case '\t':
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}
	return sb.String()
}
