package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollection_IsEmpty(t *testing.T) {
	assert.True(t, Collection{Name: "medical_faqs"}.IsEmpty())
	assert.False(t, Collection{Name: "medical_faqs", Count: 3}.IsEmpty())
}

func TestRole(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("system").IsValid())

	assert.Equal(t, "User", RoleUser.Label())
	assert.Equal(t, "Assistant", RoleAssistant.Label())
	assert.Equal(t, "SYSTEM", Role("system").Label())
}

func TestLastTurns(t *testing.T) {
	history := []ConversationTurn{
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "two"},
		{Role: RoleUser, Content: "three"},
	}

	t.Run("bounds to most recent", func(t *testing.T) {
		got := LastTurns(history, 2)
		assert.Equal(t, history[1:], got)
	})

	t.Run("shorter history unchanged", func(t *testing.T) {
		assert.Equal(t, history, LastTurns(history, 10))
	})

	t.Run("non-positive limit unchanged", func(t *testing.T) {
		assert.Equal(t, history, LastTurns(history, 0))
	})
}

func TestAnswer_SourceIDs(t *testing.T) {
	answer := Answer{
		Passages: []RetrievedPassage{
			{SourceID: "FAQ-3"},
			{SourceID: "FAQ-1"},
			{SourceID: "FAQ-3"},
		},
	}

	assert.Equal(t, []string{"FAQ-3", "FAQ-1"}, answer.SourceIDs())
	assert.Empty(t, Answer{}.SourceIDs())
}

func TestRating_IsValid(t *testing.T) {
	assert.True(t, RatingUp.IsValid())
	assert.True(t, RatingDown.IsValid())
	assert.False(t, Rating("meh").IsValid())
	assert.False(t, Rating("").IsValid())
}
