package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal chat",
	Long: `Launch the terminal chat interface. Answers stream as they are
generated and the passages they cite are listed below the transcript.

Controls:
  Enter    - Ask
  Esc      - Stop the current answer
  + / -    - Rate the last answer (on an empty input)
  Ctrl+R   - Start a new conversation
  Ctrl+S   - Toggle the sources panel
  PgUp/Dn  - Scroll
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	assistant, err := requireAssistant()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Assistant: assistant,
		Feedback:  services.Feedback,
		Index:     services.Index,
		Chat:      currentSettings().Chat,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	watchPrompts(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
