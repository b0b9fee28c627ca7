package layout

import "strings"

// Wrap splits text into lines no wider than maxWidth. Explicit newlines start a
// new line; words wider than maxWidth are broken between characters. It always
// returns at least one line.
func Wrap(m Measurer, text string, maxWidth, fontSize float64, bold bool) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lines = append(lines, wrapParagraph(m, para, maxWidth, fontSize, bold)...)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func wrapParagraph(m Measurer, para string, maxWidth, fontSize float64, bold bool) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	fits := func(s string) bool { return m.TextWidth(s, fontSize, bold) <= maxWidth }

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if fits(candidate) {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if fits(word) {
			current = word
			continue
		}
		// hard-break an overlong word
		pieces := breakWord(word, fits)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func breakWord(word string, fits func(string) bool) []string {
	var pieces []string
	var piece []rune
	for _, r := range word {
		next := append(piece, r)
		if len(piece) > 0 && !fits(string(next)) {
			pieces = append(pieces, string(piece))
			piece = []rune{r}
			continue
		}
		piece = next
	}
	return append(pieces, string(piece))
}
