package terminal

import (
	"fmt"
	"io"
	"strings"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[?25l\x1b[H\x1b[2J"
	exitAltScreen  = "\x1b[?25h\x1b[?1049l"
)

// Screen writes cursor-addressed output to a terminal.
type Screen struct {
	out io.Writer
}

func NewScreen(out io.Writer) *Screen {
	return &Screen{out: out}
}

// Enter switches to the alternate screen, hides the cursor and clears it.
func (s *Screen) Enter() error {
	_, err := io.WriteString(s.out, enterAltScreen)
	return err
}

// Exit restores the cursor and the primary screen.
func (s *Screen) Exit() error {
	_, err := io.WriteString(s.out, exitAltScreen)
	return err
}

// PaintRow replaces the contents of a 1-based row.
func (s *Screen) PaintRow(row int, text string) error {
	var b strings.Builder
	writeRow(&b, row, text)
	_, err := io.WriteString(s.out, b.String())
	return err
}

func writeRow(b *strings.Builder, row int, text string) {
	fmt.Fprintf(b, "\x1b[%d;1H\x1b[2K", row)
	b.WriteString(text)
}
