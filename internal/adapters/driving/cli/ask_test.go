package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func TestAsk_BufferedWhenNotTerminal(t *testing.T) {
	assistant := &mockAssistant{}

	out, _, err := execute(t, &Services{Assistant: assistant}, "", "ask", "What helps with flu?")

	require.NoError(t, err)
	assert.Contains(t, out, "Rest and fluids [FAQ-1].")
	assert.Contains(t, out, "Sources: FAQ-1")
	require.Len(t, assistant.Requests(), 1)
	assert.Equal(t, "What helps with flu?", assistant.Requests()[0].Question)
	assert.Empty(t, assistant.Requests()[0].History)
}

func TestAsk_JSON(t *testing.T) {
	assistant := &mockAssistant{}

	out, _, err := execute(t, &Services{Assistant: assistant}, "", "ask", "--json", "-l", "fr", "Flu?")

	require.NoError(t, err)
	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Flu?", got.Question)
	assert.Equal(t, "Rest and fluids [FAQ-1].", got.Answer)
	assert.Equal(t, []string{"FAQ-1"}, got.Sources)
	assert.False(t, got.NoContext)
	assert.Equal(t, "fr", assistant.Requests()[0].Language)
}

func TestAsk_NoContextHasNoSources(t *testing.T) {
	assistant := &mockAssistant{answer: func(req domain.AskRequest) domain.Answer {
		return domain.Answer{Question: req.Question, Text: domain.NoContextMessage, NoContext: true}
	}}

	out, _, err := execute(t, &Services{Assistant: assistant}, "", "ask", "Unrelated")

	require.NoError(t, err)
	assert.Contains(t, out, domain.NoContextMessage)
	assert.NotContains(t, out, "Sources:")
}

func TestAsk_WarnsWhenIndexNotBuilt(t *testing.T) {
	svc := &Services{
		Assistant:  &mockAssistant{},
		IndexBuilt: func(context.Context) bool { return false },
	}

	_, errOut, err := execute(t, svc, "", "ask", "Flu?")

	require.NoError(t, err)
	assert.Contains(t, errOut, domain.IndexNotBuiltMessage)
}

func TestAsk_ReportsMissingLLM(t *testing.T) {
	cfgErr := errors.Join(domain.ErrConfiguration, errors.New("llm model is required"))

	_, _, err := execute(t, &Services{AssistantErr: cfgErr}, "", "ask", "Flu?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, _, err := execute(t, &Services{Assistant: &mockAssistant{}}, "", "ask")
	assert.Error(t, err)
}
