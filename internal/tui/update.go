package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanpelt/headcord/internal/tui/components"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case incomingMsg:
		m.renderer.Append(msg.text)
		m.paintWindow()
		m.paintStatus()
		return m, nil

	case noticeMsg:
		return m.notice(msg.text)

	case stateMsg:
		m.state = msg.state
		m.paintStatus()
		return m, nil

	case readyMsg:
		ready := msg.ready
		m.ready = &ready
		m.user = ready.User.DisplayName()
		m.paintStatus()
		return m, nil

	case postResultMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("channel", msg.channelID).Msg("post failed")
			return m.notice("send failed: " + msg.err.Error())
		}
		return m, nil

	case sessionClosedMsg:
		if msg.err != nil {
			m.log.Info().Err(msg.err).Msg("session closed, leaving UI")
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		line := m.editor.Submit()
		m.paintInput()
		return m.submit(line)

	case key.Matches(msg, m.keys.Delete):
		m.editor.Backspace()
		m.paintInput()

	case key.Matches(msg, m.keys.Left):
		m.editor.MoveCursor(-1)
		m.paintInput()

	case key.Matches(msg, m.keys.Right):
		m.editor.MoveCursor(1)
		m.paintInput()

	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll(components.ScrollStep)

	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll(-components.ScrollStep)

	case key.Matches(msg, m.keys.PageUp):
		m.scroll(m.renderer.WindowHeight())

	case key.Matches(msg, m.keys.PageDown):
		m.scroll(-m.renderer.WindowHeight())

	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		if msg.Alt {
			return m, nil
		}
		for _, r := range msg.Runes {
			m.editor.Insert(r)
		}
		m.paintInput()
	}

	// Anything else, function keys and unbound control keys included, is ignored.
	return m, nil
}

func (m model) scroll(delta int) {
	before := m.renderer.Offset()
	if m.renderer.ChangeOffset(delta) == before {
		return
	}
	m.paintWindow()
	m.paintStatus()
}

func (m model) notice(text string) (tea.Model, tea.Cmd) {
	m.renderer.Append("-- " + text)
	m.paintWindow()
	m.paintStatus()
	return m, nil
}
