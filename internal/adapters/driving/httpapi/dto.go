package httpapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

var validate = validator.New()

// TurnDTO is one prior conversation turn.
type TurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AskRequest is the body of the ask endpoints.
type AskRequest struct {
	Question string    `json:"question" validate:"required,max=4000"`
	History  []TurnDTO `json:"history" validate:"omitempty,dive"`
	Language string    `json:"language" validate:"omitempty,max=64"`
}

// toDomain keeps at most maxTurns of the most recent history.
func (r AskRequest) toDomain(maxTurns int) domain.AskRequest {
	history := r.History
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	turns := make([]domain.ConversationTurn, len(history))
	for i, t := range history {
		turns[i] = domain.ConversationTurn{Role: domain.Role(t.Role), Content: t.Content}
	}
	return domain.AskRequest{Question: r.Question, History: turns, Language: r.Language}
}

// PassageDTO is a cited passage.
type PassageDTO struct {
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// AskResponse is the body returned by POST /api/v1/ask.
type AskResponse struct {
	Answer          string       `json:"answer"`
	StandaloneQuery string       `json:"standalone_query"`
	Language        string       `json:"language"`
	Sources         []string     `json:"sources"`
	Passages        []PassageDTO `json:"passages"`
	NoContext       bool         `json:"no_context"`
}

func newAskResponse(a domain.Answer) AskResponse {
	passages := make([]PassageDTO, len(a.Passages))
	for i, p := range a.Passages {
		passages[i] = PassageDTO{SourceID: p.SourceID, Text: p.Text, Distance: p.Distance}
	}
	return AskResponse{
		Answer:          a.Text,
		StandaloneQuery: a.StandaloneQuery,
		Language:        a.Language,
		Sources:         a.SourceIDs(),
		Passages:        passages,
		NoContext:       a.NoContext,
	}
}

// FeedbackRequest is the body of POST /api/v1/feedback.
type FeedbackRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Rating   string `json:"rating" validate:"required,oneof=up down"`
}

// FeedbackResponse acknowledges a recorded rating.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexResponse describes the live collection.
type IndexResponse struct {
	Built      bool      `json:"built"`
	Collection string    `json:"collection,omitempty"`
	ModelID    string    `json:"model_id,omitempty"`
	Dimensions int       `json:"dimensions,omitempty"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// validationFields maps failed struct fields to readable messages.
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		switch fe.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("%s is required", fe.Field())
		case "oneof":
			fields[name] = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "max":
			fields[name] = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			fields[name] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
		}
	}
	return fields
}
