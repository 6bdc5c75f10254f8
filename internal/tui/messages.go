package tui

import "github.com/vanpelt/headcord/internal/models"

// Messages handed to the event loop from other goroutines.
type incomingMsg struct {
	text string
}
type noticeMsg struct {
	text string
}
type stateMsg struct {
	state string
}
type readyMsg struct {
	ready models.Ready
}
type sessionClosedMsg struct {
	err error
}

// Result of an asynchronous post.
type postResultMsg struct {
	channelID string
	err       error
}
