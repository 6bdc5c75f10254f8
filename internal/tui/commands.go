package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const postTimeout = 15 * time.Second

// submit handles one line from the input editor. The raw line still carries
// the editor's trailing blanks.
func (m model) submit(line string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(line)
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.command(text)
	}
	if m.channelID == "" {
		return m.notice("no channel selected, use /channel <id>")
	}
	if m.poster == nil {
		return m.notice("sending is not available")
	}
	m.log.Debug().Str("channel", m.channelID).Int("len", len(text)).Msg("posting message")
	return m, postMessage(m.poster, m.channelID, text)
}

// postMessage runs the request off the event loop.
func postMessage(p Poster, channelID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
		defer cancel()
		_, err := p.CreateMessage(ctx, channelID, text)
		return postResultMsg{channelID: channelID, err: err}
	}
}

func (m model) command(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/help":
		return m.showHelp()

	case "/channel":
		if len(fields) < 2 {
			if m.channelID == "" {
				return m.notice("no channel selected, use /channel <id>")
			}
			return m.notice("current channel: " + m.channelLabel())
		}
		m.channelID = fields[1]
		return m.notice("sending to " + m.channelLabel())

	case "/channels":
		return m.listChannels()

	default:
		return m.notice(fmt.Sprintf("unknown command %s, try /help", fields[0]))
	}
}

func (m model) showHelp() (tea.Model, tea.Cmd) {
	var lines []string
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, h.Key+": "+h.Desc)
		}
	}
	lines = append(lines,
		"/channel <id>: send to a channel",
		"/channels: list known channels",
		"/quit: leave",
	)
	return m.notice("keys and commands\n" + strings.Join(lines, "\n"))
}

func (m model) listChannels() (tea.Model, tea.Cmd) {
	if m.ready == nil {
		return m.notice("channel list not received yet")
	}
	var lines []string
	for _, g := range m.ready.Guilds {
		for _, c := range g.Channels {
			if c.Name == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s #%s %s", g.DisplayName(), c.Name, c.ID))
		}
	}
	if len(lines) == 0 {
		return m.notice("no channels")
	}
	return m.notice("channels\n" + strings.Join(lines, "\n"))
}
