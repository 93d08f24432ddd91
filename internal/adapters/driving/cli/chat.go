package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

var chatLanguage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversational session",
	Long: `Start a line-based conversation. Follow-up questions are rewritten
using the conversation so far before retrieval.

Commands:
  /up     rate the last answer as helpful
  /down   rate the last answer as not helpful
  /reset  forget the conversation
  /quit   leave (also Ctrl+D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatLanguage, "language", "l", "", "answer language (detected when empty)")
	rootCmd.AddCommand(chatCmd)
}

// chatSession holds one REPL's conversation.
type chatSession struct {
	cmd       *cobra.Command
	out       io.Writer
	assistant driving.Assistant
	feedback  driving.FeedbackService
	maxTurns  int
	language  string

	history      []domain.ConversationTurn
	lastQuestion string
	lastAnswer   string
	rated        bool
}

func runChat(cmd *cobra.Command, _ []string) error {
	assistant, err := requireAssistant()
	if err != nil {
		return err
	}

	if !indexBuilt(cmd.Context()) {
		cmd.PrintErrln(domain.IndexNotBuiltMessage)
	}
	watchPrompts(cmd.Context())

	session := &chatSession{
		cmd:       cmd,
		out:       cmd.OutOrStdout(),
		assistant: assistant,
		feedback:  services.Feedback,
		maxTurns:  currentSettings().Chat.MaxHistoryTurns,
		language:  chatLanguage,
	}

	out := session.out
	fmt.Fprintln(out, "faqrag chat. Ask a medical question; /quit to leave.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if cmd.Context().Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if session.command(line) {
				return nil
			}
			continue
		}
		session.ask(line)
	}
}

// command handles a slash command and reports whether to quit.
func (s *chatSession) command(line string) bool {
	switch strings.ToLower(line) {
	case "/quit", "/exit":
		return true
	case "/reset":
		s.history = nil
		s.lastAnswer = ""
		fmt.Fprintln(s.out, "Conversation cleared.")
	case "/up":
		s.rate(domain.RatingUp)
	case "/down":
		s.rate(domain.RatingDown)
	default:
		fmt.Fprintln(s.out, "Commands: /up, /down, /reset, /quit")
	}
	return false
}

func (s *chatSession) ask(question string) {
	req := domain.AskRequest{
		Question: question,
		History:  windowed(s.history, s.maxTurns),
		Language: s.language,
	}

	fmt.Fprint(s.out, "Assistant: ")
	answer, fragments := s.assistant.AskStream(s.cmd.Context(), req)

	var text strings.Builder
	for fragment := range fragments {
		text.WriteString(fragment)
		fmt.Fprint(s.out, fragment)
	}
	fmt.Fprintln(s.out)
	answer.Text = text.String()
	printSources(s.out, answer)

	if s.cmd.Context().Err() != nil {
		return
	}

	s.history = append(s.history,
		domain.ConversationTurn{Role: domain.RoleUser, Content: question},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: answer.Text},
	)
	s.lastQuestion = question
	s.lastAnswer = answer.Text
	s.rated = false
}

func (s *chatSession) rate(rating domain.Rating) {
	switch {
	case s.feedback == nil:
		fmt.Fprintln(s.out, "Feedback is not enabled.")
		return
	case s.lastAnswer == "":
		fmt.Fprintln(s.out, "There is no answer to rate yet.")
		return
	case s.rated:
		fmt.Fprintln(s.out, "The last answer is already rated.")
		return
	}

	if _, err := s.feedback.Record(s.cmd.Context(), s.lastQuestion, s.lastAnswer, rating); err != nil {
		fmt.Fprintf(s.out, "Could not record feedback: %v\n", err)
		return
	}
	s.rated = true
	fmt.Fprintln(s.out, "Thanks for the feedback.")
}

// windowed returns a copy of the last maxTurns turns.
func windowed(history []domain.ConversationTurn, maxTurns int) []domain.ConversationTurn {
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	out := make([]domain.ConversationTurn, len(history))
	copy(out, history)
	return out
}
