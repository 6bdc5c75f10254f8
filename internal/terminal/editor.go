package terminal

import (
	"io"
	"strings"
)

// Editor is a single input line with a fixed capacity. The buffer is always
// full: unused cells hold spaces, inserting pushes the last rune out and
// deleting pads the end with a space.
type Editor struct {
	buf    []rune
	cursor int
}

// NewEditor returns an empty editor holding width runes.
func NewEditor(width int) *Editor {
	if width < 1 {
		width = 1
	}
	e := &Editor{buf: make([]rune, width)}
	e.Clear()
	return e
}

// Insert places r at the cursor and advances it. With the cursor past the
// last cell nothing changes and Insert reports false.
func (e *Editor) Insert(r rune) bool {
	if e.cursor >= len(e.buf) {
		return false
	}
	copy(e.buf[e.cursor+1:], e.buf[e.cursor:len(e.buf)-1])
	e.buf[e.cursor] = r
	e.cursor++
	return true
}

// Backspace removes the rune before the cursor. It is a no-op at column zero.
func (e *Editor) Backspace() bool {
	if e.cursor == 0 {
		return false
	}
	copy(e.buf[e.cursor-1:], e.buf[e.cursor:])
	e.buf[len(e.buf)-1] = ' '
	e.cursor--
	return true
}

// MoveCursor shifts the cursor by delta, clamped to [0, capacity].
func (e *Editor) MoveCursor(delta int) {
	e.cursor = clamp(e.cursor+delta, 0, len(e.buf))
}

// Submit returns the whole buffer, trailing blanks included, and clears it.
func (e *Editor) Submit() string {
	line := string(e.buf)
	e.Clear()
	return line
}

func (e *Editor) Clear() {
	for i := range e.buf {
		e.buf[i] = ' '
	}
	e.cursor = 0
}

func (e *Editor) Cursor() int    { return e.cursor }
func (e *Editor) Cap() int       { return len(e.buf) }
func (e *Editor) String() string { return string(e.buf) }

// Render returns the buffer with the rune under the cursor passed through
// highlight. A cursor past the last cell highlights nothing.
func (e *Editor) Render(highlight func(string) string) string {
	if highlight == nil || e.cursor >= len(e.buf) {
		return string(e.buf)
	}
	var b strings.Builder
	b.WriteString(string(e.buf[:e.cursor]))
	b.WriteString(highlight(string(e.buf[e.cursor])))
	b.WriteString(string(e.buf[e.cursor+1:]))
	return b.String()
}

// Repaint redraws the input on row.
func (e *Editor) Repaint(w io.Writer, row int, highlight func(string) string) error {
	var b strings.Builder
	writeRow(&b, row, e.Render(highlight))
	_, err := io.WriteString(w, b.String())
	return err
}
