package domain

import (
	"strings"
	"time"
)

// Role identifies who produced a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Label returns the prefix used when rendering a transcript line.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return strings.ToUpper(string(r))
	}
}

// ConversationTurn is one message in a chat session.
// History is owned by the caller; the core only reads it.
type ConversationTurn struct {
	Role    Role
	Content string
}

// LastTurns returns at most n of the most recent turns.
// A non-positive n returns the history unchanged.
func LastTurns(history []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// AskRequest is a single question posed to the assistant.
type AskRequest struct {
	// Question is the user's utterance exactly as typed.
	Question string

	// History holds earlier turns of the session, oldest first.
	History []ConversationTurn

	// Language overrides the answer language. Empty means configured or detected.
	Language string
}

// Answer is the outcome of one assistant turn.
// It carries the question/answer pair so front ends can attach feedback.
type Answer struct {
	// Question is the original user question.
	Question string

	// StandaloneQuery is the query actually used for retrieval.
	StandaloneQuery string

	// Text is the final answer, the fixed no-context message, or the apology.
	Text string

	// Passages are the retrieved context passages, nearest first.
	Passages []RetrievedPassage

	// Language is the answer language passed to the model.
	Language string

	// NoContext is true when retrieval returned nothing and the model was not called.
	NoContext bool
}

// SourceIDs returns the distinct source ids of the passages in order.
func (a Answer) SourceIDs() []string {
	seen := make(map[string]bool, len(a.Passages))
	ids := make([]string, 0, len(a.Passages))
	for _, p := range a.Passages {
		if seen[p.SourceID] {
			continue
		}
		seen[p.SourceID] = true
		ids = append(ids, p.SourceID)
	}
	return ids
}

// StreamChunk is one fragment of a streamed model response.
type StreamChunk struct {
	// Content is the text delta.
	Content string

	// Err is set on the final chunk when the transport failed.
	Err error

	// Done marks the end of the stream.
	Done bool
}

// Rating is a user's verdict on an answer.
type Rating string

// Available ratings.
const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// IsValid returns true if the rating is recognised.
func (r Rating) IsValid() bool {
	return r == RatingUp || r == RatingDown
}

// Feedback is an append-only record of a rated answer.
type Feedback struct {
	ID        string
	Timestamp time.Time
	Question  string
	Answer    string
	Rating    Rating
}
