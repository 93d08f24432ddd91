package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func TestChat_CarriesHistory(t *testing.T) {
	assistant := &mockAssistant{}
	feedback := &mockFeedback{}
	svc := &Services{Assistant: assistant, Feedback: feedback}

	out, _, err := execute(t, svc, "What is flu?\nHow is it treated?\n/quit\n", "chat")

	require.NoError(t, err)
	reqs := assistant.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].History)
	assert.Equal(t, []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "What is flu?"},
		{Role: domain.RoleAssistant, Content: "Rest and fluids [FAQ-1]."},
	}, reqs[1].History)
	assert.Contains(t, out, "Assistant: Rest and fluids [FAQ-1].")
	assert.Contains(t, out, "Sources: FAQ-1")
}

func TestChat_RatesLastAnswerOnce(t *testing.T) {
	feedback := &mockFeedback{}
	svc := &Services{Assistant: &mockAssistant{}, Feedback: feedback}

	out, _, err := execute(t, svc, "/up\nWhat is flu?\n/down\n/up\n/exit\n", "chat")

	require.NoError(t, err)
	require.Len(t, feedback.records, 1)
	assert.Equal(t, domain.RatingDown, feedback.records[0].Rating)
	assert.Equal(t, "What is flu?", feedback.records[0].Question)
	assert.Equal(t, "Rest and fluids [FAQ-1].", feedback.records[0].Answer)
	assert.Contains(t, out, "There is no answer to rate yet.")
	assert.Contains(t, out, "already rated")
}

func TestChat_FeedbackError(t *testing.T) {
	feedback := &mockFeedback{err: errors.New("disk full")}
	svc := &Services{Assistant: &mockAssistant{}, Feedback: feedback}

	out, _, err := execute(t, svc, "Flu?\n/up\n", "chat")

	require.NoError(t, err)
	assert.Contains(t, out, "Could not record feedback: disk full")
}

func TestChat_ResetClearsHistory(t *testing.T) {
	assistant := &mockAssistant{}

	_, _, err := execute(t, &Services{Assistant: assistant}, "One?\n/reset\nTwo?\n", "chat")

	require.NoError(t, err)
	reqs := assistant.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[1].History)
}

func TestChat_WindowsHistory(t *testing.T) {
	assistant := &mockAssistant{}
	settings := domain.DefaultAppSettings()
	settings.Chat.MaxHistoryTurns = 2
	svc := &Services{Assistant: assistant, Settings: &settings}

	_, _, err := execute(t, svc, "One?\nTwo?\nThree?\n", "chat")

	require.NoError(t, err)
	reqs := assistant.Requests()
	require.Len(t, reqs, 3)
	require.Len(t, reqs[2].History, 2)
	assert.Equal(t, "Two?", reqs[2].History[0].Content)
}

func TestChat_WithoutFeedback(t *testing.T) {
	out, _, err := execute(t, &Services{Assistant: &mockAssistant{}}, "Flu?\n/up\n", "chat")

	require.NoError(t, err)
	assert.Contains(t, out, "Feedback is not enabled.")
}

func TestWindowed(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "a"},
		{Role: domain.RoleAssistant, Content: "b"},
		{Role: domain.RoleUser, Content: "c"},
	}

	got := windowed(history, 2)
	assert.Equal(t, history[1:], got)

	got[0].Content = "changed"
	assert.Equal(t, "b", history[1].Content)

	assert.Len(t, windowed(history, 0), 3)
	assert.NotNil(t, windowed(nil, 5))
}
