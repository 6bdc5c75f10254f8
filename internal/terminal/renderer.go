package terminal

import (
	"io"
	"strings"
)

// ReservedRows are the rows below the message window: input line and status line.
const ReservedRows = 2

// Renderer keeps the wrapped scrollback and paints the visible window. The
// offset counts lines from the bottom; zero means the newest line is visible.
// Renderer is not safe for concurrent use.
type Renderer struct {
	width  int
	window int

	lines  []string
	offset int
}

// NewRenderer sizes the renderer for a terminal of width columns and rows rows.
func NewRenderer(width, rows int) *Renderer {
	if width < MinWrapWidth {
		width = MinWrapWidth
	}
	window := rows - ReservedRows
	if window < 1 {
		window = 1
	}
	return &Renderer{width: width, window: window}
}

// Append wraps text and adds it to the scrollback. The offset is left as is,
// so a reader scrolled back keeps their place.
func (r *Renderer) Append(text string) int {
	wrapped := Wrap(text, r.width)
	r.lines = append(r.lines, wrapped...)
	return len(wrapped)
}

// ChangeOffset moves the window by delta lines (positive scrolls back) and
// returns the clamped offset.
func (r *Renderer) ChangeOffset(delta int) int {
	r.offset = clamp(r.offset+delta, 0, r.MaxOffset())
	return r.offset
}

func (r *Renderer) Offset() int       { return r.offset }
func (r *Renderer) TotalLines() int   { return len(r.lines) }
func (r *Renderer) WindowHeight() int { return r.window }
func (r *Renderer) Width() int        { return r.width }

// MaxOffset is the largest offset that still fills the window.
func (r *Renderer) MaxOffset() int {
	if n := len(r.lines) - r.window; n > 0 {
		return n
	}
	return 0
}

// Window returns the visible lines, oldest first. With fewer lines than the
// window height they are top-aligned.
func (r *Renderer) Window() []string {
	end := len(r.lines) - r.offset
	start := end - r.window
	if start < 0 {
		start = 0
	}
	return r.lines[start:end]
}

// Repaint writes every window row. Rows without a line are cleared.
func (r *Renderer) Repaint(w io.Writer) error {
	visible := r.Window()
	var b strings.Builder
	for row := 0; row < r.window; row++ {
		text := ""
		if row < len(visible) {
			text = visible[row]
		}
		writeRow(&b, row+1, text)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
