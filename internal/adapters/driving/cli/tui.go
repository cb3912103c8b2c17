package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui"
)

// runProgram runs a TUI app. Tests replace it to avoid taking the terminal.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface.

Ask questions, read answers with their sources, expand the retrieved context
and browse the question history.

Controls:
  Enter    - Ask / Select
  n        - New question
  c        - Show context
  ↑/k, ↓/j - Navigate
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	session, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(cmd, session)

	app, err := tui.NewApp(&tui.Ports{
		Answer:    session.Answer,
		Retrieval: session.Retrieval,
		History:   session.History,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
