package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/logger"
)

var tuiLogFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Ask questions, browse ingested documents and their extracted text, and
upload new PDF or DOCX files with keyboard navigation.

Logs would corrupt the screen, so they are discarded unless --log-file is set.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Ask / Select / Upload
  n        - New question
  Esc      - Back
  q        - Quit (from the menu)`,
	RunE: runTUI,
}

// runProgram runs the app until it exits. Tests replace it.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

func init() {
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "write logs to this file while the UI runs")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in TUI: %v\n%s", r, debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Retrieval: retrievalService,
		Document:  documentService,
		Ingest:    ingestService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	var logOut io.Writer = io.Discard
	if tuiLogFile != "" {
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.SetOutput(logOut)
	defer logger.SetOutput(os.Stderr)

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
