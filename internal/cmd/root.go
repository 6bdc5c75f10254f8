package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headcord <token>",
		Short: "Terminal client for a Discord-style gateway",
		Long: `# headcord

**A terminal client for a Discord-style real-time gateway.**

Connects with the given account token, prints incoming messages as a
scrolling log and accepts typed lines at the bottom of the screen.

## Keys

- **↑ / ↓** scroll by five lines, **PgUp / PgDn** by a page
- **← / →** move the cursor, **Backspace** deletes
- **Enter** sends the line, **Ctrl+Q** or **Ctrl+C** quits

## Commands

- **/channel ID** choose where typed lines go
- **/channels** list the channels from the READY snapshot
- **/help** show keys and commands
- **/quit** leave

## Configuration

Settings are read from **$HEADCORD_CONFIG** or **~/.config/headcord/config.yaml**
and can be overridden with environment variables prefixed **HEADCORD_**
(for example **HEADCORD_CHANNEL**). Logs go to **log_file**; set **DEBUG=1** for
debug logging.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runClient,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		renderMarkdownHelp(c)
	})
	return cmd
}

// exitError carries a process exit status for a failure that has already
// been reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// renderMarkdownHelp renders command help with glamour
func renderMarkdownHelp(cmd *cobra.Command) {
	var helpContent strings.Builder

	if cmd.Long != "" {
		helpContent.WriteString(cmd.Long)
		helpContent.WriteString("\n\n")
	} else if cmd.Short != "" {
		helpContent.WriteString("# " + cmd.Short)
		helpContent.WriteString("\n\n")
	}

	helpContent.WriteString("## Usage\n\n")
	helpContent.WriteString("```bash\n")
	helpContent.WriteString(cmd.UseLine())
	helpContent.WriteString("\n```\n\n")

	if cmd.HasAvailableFlags() {
		helpContent.WriteString("## Flags\n\n")
		if flagUsages := cmd.Flags().FlagUsages(); flagUsages != "" {
			helpContent.WriteString("```\n")
			helpContent.WriteString(flagUsages)
			helpContent.WriteString("```\n\n")
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Usage, not Help: Help would land back here.
		_ = cmd.Usage()
		return
	}

	rendered, err := renderer.Render(helpContent.String())
	if err != nil {
		_ = cmd.Usage()
		return
	}

	fmt.Fprint(cmd.OutOrStdout(), rendered)
}
