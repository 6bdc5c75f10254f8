package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// Color scheme
const (
	ColorPrimary = "6" // Cyan
	ColorSuccess = "2" // Green
	ColorWarning = "3" // Yellow
	ColorError   = "1" // Red
	ColorMuted   = "8" // Dark gray
	ColorText    = "15"
)

// Styles are bound to one lipgloss renderer so color detection follows the
// terminal the UI writes to. Only fixed colors are used: adaptive colors would
// make lipgloss query the terminal while the event loop owns its input.
type Styles struct {
	Cursor       lipgloss.Style
	Status       lipgloss.Style
	Connected    lipgloss.Style
	Disconnected lipgloss.Style
	Channel      lipgloss.Style
	Scrolled     lipgloss.Style
	Help         help.Styles
}

func NewStyles(r *lipgloss.Renderer) Styles {
	muted := r.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	return Styles{
		Cursor:       r.NewStyle().Reverse(true),
		Status:       r.NewStyle().Foreground(lipgloss.Color(ColorText)),
		Connected:    r.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Bold(true),
		Disconnected: r.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true),
		Channel:      r.NewStyle().Foreground(lipgloss.Color(ColorPrimary)),
		Scrolled:     r.NewStyle().Foreground(lipgloss.Color(ColorWarning)),
		Help: help.Styles{
			Ellipsis:       muted,
			ShortKey:       r.NewStyle().Foreground(lipgloss.Color(ColorPrimary)),
			ShortDesc:      muted,
			ShortSeparator: muted,
			FullKey:        r.NewStyle().Foreground(lipgloss.Color(ColorPrimary)),
			FullDesc:       muted,
			FullSeparator:  muted,
		},
	}
}
