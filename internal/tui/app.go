package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanpelt/headcord/internal/logger"
	"github.com/vanpelt/headcord/internal/models"
	"github.com/vanpelt/headcord/internal/tui/components"
)

// Options configures an App. Width and Height are the fixed terminal size.
type Options struct {
	Width  int
	Height int
	Input  io.Reader
	Output io.Writer

	// Channel is the initial destination for typed lines.
	Channel string
	Poster  Poster
	// State is shown in the status row until SetState is called.
	State string
	// Renderer defaults to a lipgloss renderer for Output.
	Renderer *lipgloss.Renderer
}

// App is the terminal front end: a bubbletea event loop without a renderer
// that paints cursor-addressed rows itself. Other goroutines talk to it through
// the exported methods, which hand messages to the loop.
type App struct {
	model   model
	input   io.Reader
	program *tea.Program

	started chan struct{}
	done    chan struct{}
}

func NewApp(opts Options) *App {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	r := opts.Renderer
	if r == nil {
		r = lipgloss.NewRenderer(opts.Output)
	}
	return &App{
		model:   newModel(opts, components.NewStyles(r)),
		input:   opts.Input,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run owns the terminal until the user quits, the session closes or ctx ends.
// The terminal must already be in raw mode.
func (a *App) Run(ctx context.Context) error {
	defer close(a.done)

	a.program = tea.NewProgram(a.model,
		tea.WithContext(ctx),
		tea.WithInput(a.input),
		tea.WithOutput(a.model.out),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	close(a.started)

	if err := a.model.screen.Enter(); err != nil {
		return fmt.Errorf("enter alt screen: %w", err)
	}
	a.model.paintAll()

	_, err := a.program.Run()
	if exitErr := a.model.screen.Exit(); exitErr != nil {
		logger.Warnf("exit alt screen: %v", exitErr)
	}

	switch {
	case err == nil, errors.Is(err, tea.ErrInterrupted), errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}

func (a *App) send(msg tea.Msg) {
	select {
	case <-a.started:
		a.program.Send(msg)
	case <-a.done:
	}
}

// PostMessage appends a line of text to the scrollback.
func (a *App) PostMessage(text string) {
	a.send(incomingMsg{text: text})
}

// Notice appends a local status line to the scrollback.
func (a *App) Notice(text string) {
	a.send(noticeMsg{text: text})
}

// SetState updates the connection state shown in the status row.
func (a *App) SetState(state string) {
	a.send(stateMsg{state: state})
}

// SetReady records the READY snapshot for the status row and channel names.
func (a *App) SetReady(ready models.Ready) {
	a.send(readyMsg{ready: ready})
}

// SessionClosed makes the event loop exit.
func (a *App) SessionClosed(err error) {
	a.send(sessionClosedMsg{err: err})
}
