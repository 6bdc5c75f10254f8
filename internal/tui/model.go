package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/vanpelt/headcord/internal/logger"
	"github.com/vanpelt/headcord/internal/models"
	"github.com/vanpelt/headcord/internal/terminal"
	"github.com/vanpelt/headcord/internal/tui/components"
)

// Poster sends a line of text to a channel.
type Poster interface {
	CreateMessage(ctx context.Context, channelID, content string) (models.Message, error)
}

// model owns the scrollback and the input line. It is only touched from the
// bubbletea event loop, and paints by writing escape sequences straight to out.
type model struct {
	renderer *terminal.Renderer
	editor   *terminal.Editor
	screen   *terminal.Screen
	out      io.Writer
	log      zerolog.Logger

	keys   components.KeyMap
	styles components.Styles
	help   help.Model

	width     int
	state     string
	user      string
	channelID string
	ready     *models.Ready
	poster    Poster
}

func newModel(opts Options, styles components.Styles) model {
	h := help.New()
	h.Styles = styles.Help

	return model{
		renderer:  terminal.NewRenderer(opts.Width, opts.Height),
		editor:    terminal.NewEditor(opts.Width),
		screen:    terminal.NewScreen(opts.Output),
		out:       opts.Output,
		log:       logger.Component("tui"),
		keys:      components.DefaultKeyMap(),
		styles:    styles,
		help:      h,
		width:     opts.Width,
		state:     opts.State,
		channelID: opts.Channel,
		poster:    opts.Poster,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// View is unused: the program runs without a renderer.
func (m model) View() string {
	return ""
}

func (m model) inputRow() int  { return m.renderer.WindowHeight() + 1 }
func (m model) statusRow() int { return m.renderer.WindowHeight() + 2 }

func (m model) paintWindow() {
	if err := m.renderer.Repaint(m.out); err != nil {
		m.log.Warn().Err(err).Msg("repaint window")
	}
}

func (m model) paintInput() {
	if err := m.editor.Repaint(m.out, m.inputRow(), func(s string) string { return m.styles.Cursor.Render(s) }); err != nil {
		m.log.Warn().Err(err).Msg("repaint input")
	}
}

func (m model) paintStatus() {
	if err := m.screen.PaintRow(m.statusRow(), m.statusLine()); err != nil {
		m.log.Warn().Err(err).Msg("repaint status")
	}
}

func (m model) paintAll() {
	m.paintWindow()
	m.paintInput()
	m.paintStatus()
}

// channelLabel is "#name" when READY listed the channel, else "#id".
func (m model) channelLabel() string {
	if m.channelID == "" {
		return ""
	}
	if m.ready != nil {
		if _, c, ok := m.ready.FindChannel(m.channelID); ok && c.Name != "" {
			return "#" + c.Name
		}
	}
	return "#" + m.channelID
}

func (m model) statusLine() string {
	stateStyle := m.styles.Disconnected
	if m.state == "active" || m.state == "identified" {
		stateStyle = m.styles.Connected
	}

	var plain []string
	var styled []string
	add := func(text string, style lipgloss.Style) {
		if text == "" {
			return
		}
		plain = append(plain, text)
		styled = append(styled, style.Render(text))
	}
	add(m.state, stateStyle)
	add(m.user, m.styles.Status)
	add(m.channelLabel(), m.styles.Channel)
	if offset := m.renderer.Offset(); offset > 0 {
		add(fmt.Sprintf("+%d", offset), m.styles.Scrolled)
	}

	left := strings.Join(plain, " ")
	if runewidth.StringWidth(left) >= m.width {
		return runewidth.Truncate(left, m.width, "…")
	}
	line := strings.Join(styled, " ")

	m.help.Width = m.width - runewidth.StringWidth(left) - 3
	if m.help.Width > 0 {
		if hints := m.help.ShortHelpView(m.keys.ShortHelp()); hints != "" {
			line += " | " + hints
		}
	}
	return line
}
