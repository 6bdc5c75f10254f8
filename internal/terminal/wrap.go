package terminal

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// MinWrapWidth is the widest display width of a single rune.
const MinWrapWidth = 2

// Wrap splits text into lines no wider than width display cells. Lines break
// at the last word boundary that fits; a word wider than width is hard-broken.
// Embedded newlines start new lines, runs of whitespace collapse to one space
// and control characters become spaces. The one line that can exceed width is
// a single rune wider than width itself, so callers wrapping arbitrary text
// use at least MinWrapWidth.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	text = sanitize(text)

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, width)...)
	}
	return lines
}

func wrapParagraph(paragraph string, width int) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines []string
		line  strings.Builder
		lineW int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineW = 0
	}

	for _, word := range words {
		w := runewidth.StringWidth(word)
		switch {
		case w > width:
			if lineW > 0 {
				flush()
			}
			chunks := hardBreak(word, width)
			for _, chunk := range chunks[:len(chunks)-1] {
				lines = append(lines, chunk)
			}
			last := chunks[len(chunks)-1]
			line.WriteString(last)
			lineW = runewidth.StringWidth(last)
		case lineW == 0:
			line.WriteString(word)
			lineW = w
		case lineW+1+w <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			lineW += 1 + w
		default:
			flush()
			line.WriteString(word)
			lineW = w
		}
	}
	flush()
	return lines
}

// hardBreak cuts word into pieces of at most width cells. A rune wider than
// width still gets a piece of its own.
func hardBreak(word string, width int) []string {
	var (
		chunks []string
		chunk  strings.Builder
		chunkW int
	)
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if chunkW > 0 && chunkW+rw > width {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			chunkW = 0
		}
		chunk.WriteRune(r)
		chunkW += rw
	}
	if chunk.Len() > 0 {
		chunks = append(chunks, chunk.String())
	}
	return chunks
}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return ' '
		}
		return r
	}, text)
}
