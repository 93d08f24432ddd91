package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

var (
	askJSON     bool
	askNoStream bool
	askLanguage string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question",
	Long: `Answer one question from the indexed FAQ corpus.

The answer cites the passages it used as [FAQ-n]. When no passage is close
enough to the question, a fixed message is printed instead of a guess.
Output streams to a terminal; use --no-stream to wait for the full answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer and its sources as JSON")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "wait for the complete answer")
	askCmd.Flags().StringVarP(&askLanguage, "language", "l", "", "answer language (detected when empty)")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the --json shape.
type askOutput struct {
	Question        string   `json:"question"`
	StandaloneQuery string   `json:"standalone_query"`
	Answer          string   `json:"answer"`
	Language        string   `json:"language"`
	Sources         []string `json:"sources"`
	NoContext       bool     `json:"no_context"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	assistant, err := requireAssistant()
	if err != nil {
		return err
	}

	if !indexBuilt(cmd.Context()) {
		cmd.PrintErrln(domain.IndexNotBuiltMessage)
	}

	req := domain.AskRequest{Question: args[0], Language: askLanguage}
	out := cmd.OutOrStdout()

	if askJSON {
		answer := assistant.Ask(cmd.Context(), req)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(askOutput{
			Question:        answer.Question,
			StandaloneQuery: answer.StandaloneQuery,
			Answer:          answer.Text,
			Language:        answer.Language,
			Sources:         answer.SourceIDs(),
			NoContext:       answer.NoContext,
		})
	}

	if askNoStream || !isTerminal(out) {
		answer := assistant.Ask(cmd.Context(), req)
		fmt.Fprintln(out, answer.Text)
		printSources(out, answer)
		return nil
	}

	answer, fragments := assistant.AskStream(cmd.Context(), req)
	for fragment := range fragments {
		fmt.Fprint(out, fragment)
	}
	fmt.Fprintln(out)
	printSources(out, answer)
	return nil
}

func printSources(w io.Writer, answer domain.Answer) {
	ids := answer.SourceIDs()
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSources: %s\n", strings.Join(ids, ", "))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
