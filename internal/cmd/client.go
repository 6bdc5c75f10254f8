package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanpelt/headcord/internal/config"
	"github.com/vanpelt/headcord/internal/gateway"
	"github.com/vanpelt/headcord/internal/logger"
	"github.com/vanpelt/headcord/internal/models"
	"github.com/vanpelt/headcord/internal/recovery"
	"github.com/vanpelt/headcord/internal/rest"
	"github.com/vanpelt/headcord/internal/sink"
	"github.com/vanpelt/headcord/internal/tui"
)

func runClient(cmd *cobra.Command, args []string) error {
	token := strings.TrimSpace(args[0])
	if token == "" {
		return errors.New("token must not be empty")
	}

	cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
	if err != nil {
		return err
	}

	logFile, err := logger.ConfigureFile(logger.GetLogLevelFromEnv(logger.ParseLevel(cfg.LogLevel)), cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	stdin, stdout := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	if !term.IsTerminal(stdin) || !term.IsTerminal(stdout) {
		return errors.New("headcord needs an interactive terminal")
	}
	width, height, err := term.GetSize(stdout)
	if err != nil {
		return fmt.Errorf("read terminal size: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	session := gateway.NewSession(gateway.SessionConfig{
		URL:              cfg.GatewayURL,
		Token:            token,
		Capabilities:     cfg.Capabilities,
		HandshakeTimeout: cfg.HandshakeTimeout,
		Sink:             sink.New(cfg.DumpFile),
	})
	sessionLog := logger.WithField("session", session.ID)
	sessionLog.Info().Str("url", cfg.GatewayURL).Msg("starting session")

	fmt.Fprintln(out, "Attempting connect...")
	err = session.Connect(ctx)
	if err == nil {
		fmt.Fprintln(out, "Connection successful.")
		logger.Infof("connected to %s", cfg.GatewayURL)
		err = runUI(ctx, session, cfg, token, width, height)
	}
	if err != nil && ctx.Err() != nil {
		// Interrupted: whatever broke was a consequence of the signal.
		logger.Debugf("interrupted: %v", err)
		err = ctx.Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("session %s ended: %v", session.ID, err)
	}
	return finish(out, cmd.ErrOrStderr(), err)
}

// runUI puts the terminal in raw mode and runs the session next to the
// event loop until either ends.
func runUI(ctx context.Context, session *gateway.Session, cfg config.Config, token string, width, height int) error {
	stdin := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(stdin)
	if err != nil {
		_ = session.Close()
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(stdin, oldState); err != nil {
			logger.Warnf("restore terminal: %v", err)
		}
	}()

	app := tui.NewApp(tui.Options{
		Width:   width,
		Height:  height,
		Channel: cfg.Channel,
		Poster:  rest.New(cfg.APIURL, token),
		State:   session.State().String(),
	})
	wireSession(session, app)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovery.Guard("session", func() error {
		err := session.Run(gctx)
		app.SetState(session.State().String())
		app.SessionClosed(err)
		return err
	}))
	g.Go(recovery.Guard("ui", func() error {
		// Leaving the UI ends the session.
		defer session.Close()
		return app.Run(gctx)
	}))
	return g.Wait()
}

// frontend is the part of tui.App the session handlers feed.
type frontend interface {
	PostMessage(text string)
	SetReady(ready models.Ready)
	SetState(state string)
}

func wireSession(session *gateway.Session, ui frontend) {
	session.Handle(gateway.EventMessageCreate, messageHandler(ui, time.Local))
	session.OnReady(func(ready models.Ready) {
		ui.SetReady(ready)
		ui.SetState(session.State().String())
	})
}

func messageHandler(ui frontend, loc *time.Location) gateway.HandlerFunc {
	return func(_ context.Context, f gateway.Frame) error {
		msg, err := models.DecodeMessage(f.D)
		if err != nil {
			return err
		}
		ui.PostMessage(msg.Format(loc))
		return nil
	}
}

// finish prints the closing lines and maps err onto the exit status. A
// cancelled context is a user interrupt and exits cleanly.
func finish(out, errOut io.Writer, err error) error {
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	var handshake *gateway.HandshakeError
	var transport *gateway.TransportError
	fatal := errors.As(err, &handshake) || errors.As(err, &transport)

	if fatal {
		fmt.Fprintln(errOut, "Connection failed!")
		fmt.Fprintln(errOut, describe(err))
	}
	fmt.Fprintln(out, "Connection closed.")

	switch {
	case err == nil:
		return nil
	case fatal:
		return &exitError{code: 1, err: err}
	default:
		return err
	}
}

// describe turns a fatal session error into a one-line diagnostic.
func describe(err error) string {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		if closeErr.Text != "" {
			return fmt.Sprintf("server closed the connection (%d: %s)", closeErr.Code, closeErr.Text)
		}
		return fmt.Sprintf("server closed the connection (%d)", closeErr.Code)
	}
	var handshake *gateway.HandshakeError
	if errors.As(err, &handshake) {
		return "handshake failed: " + handshake.Reason
	}
	return err.Error()
}
