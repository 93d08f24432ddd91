// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// AnswerStarted carries the pipeline result and the fragment channel of a
// streamed answer. The Answer's Text is empty; fragments fill it.
type AnswerStarted struct {
	Answer    domain.Answer
	Fragments <-chan string
}

// FragmentReceived carries one streamed text fragment.
type FragmentReceived struct {
	Text string
}

// StreamFinished is sent when the fragment channel closes.
type StreamFinished struct{}

// FeedbackRecorded reports the outcome of rating an answer.
type FeedbackRecorded struct {
	Rating domain.Rating
	Err    error
}

// IndexStatusLoaded carries the collection description for the header.
type IndexStatusLoaded struct {
	Collection domain.Collection
	Err        error
}
