package components

import "github.com/charmbracelet/bubbles/key"

// Key names as reported by tea.KeyMsg.String().
const (
	KeyQuit    = "ctrl+q"
	KeyQuitAlt = "ctrl+c"

	KeyEnter     = "enter"
	KeyBackspace = "backspace"
	KeySpace     = " "
)

// Navigation keys
const (
	KeyUp       = "up"
	KeyDown     = "down"
	KeyLeft     = "left"
	KeyRight    = "right"
	KeyPageUp   = "pgup"
	KeyPageDown = "pgdown"
)

// ScrollStep is how many lines up/down move the message window.
const ScrollStep = 5

// KeyMap groups the bindings the input line understands.
type KeyMap struct {
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Left       key.Binding
	Right      key.Binding
	Submit     key.Binding
	Delete     key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollUp: key.NewBinding(
			key.WithKeys(KeyUp),
			key.WithHelp("↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys(KeyDown),
			key.WithHelp("↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys(KeyPageUp),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys(KeyPageDown),
			key.WithHelp("pgdn", "page down"),
		),
		Left: key.NewBinding(
			key.WithKeys(KeyLeft),
			key.WithHelp("←", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys(KeyRight),
			key.WithHelp("→", "cursor right"),
		),
		Submit: key.NewBinding(
			key.WithKeys(KeyEnter),
			key.WithHelp("enter", "send"),
		),
		Delete: key.NewBinding(
			key.WithKeys(KeyBackspace),
			key.WithHelp("backspace", "delete"),
		),
		Quit: key.NewBinding(
			key.WithKeys(KeyQuit, KeyQuitAlt),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp is shown in the status row.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ScrollUp, k.PageUp, k.Submit, k.Quit}
}

// FullHelp is printed by /help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown},
		{k.Left, k.Right, k.Delete, k.Submit, k.Quit},
	}
}
