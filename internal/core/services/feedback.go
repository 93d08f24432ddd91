package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// Ensure FeedbackService implements the interface.
var _ driving.FeedbackService = (*FeedbackService)(nil)

// FeedbackService validates ratings and appends them to a sink.
type FeedbackService struct {
	sink driven.FeedbackSink
	now  func() time.Time
}

// NewFeedbackService creates a feedback service. sink may be nil, in which
// case every Record call fails.
func NewFeedbackService(sink driven.FeedbackSink) *FeedbackService {
	return &FeedbackService{sink: sink, now: time.Now}
}

// Record stores a rating for a question/answer pair.
func (s *FeedbackService) Record(
	ctx context.Context, question, answer string, rating domain.Rating,
) (domain.Feedback, error) {
	if s.sink == nil {
		return domain.Feedback{}, fmt.Errorf("%w: feedback storage is not configured", domain.ErrNotImplemented)
	}
	if !rating.IsValid() {
		return domain.Feedback{}, fmt.Errorf("%w: rating must be %q or %q, got %q",
			domain.ErrInvalidInput, domain.RatingUp, domain.RatingDown, rating)
	}
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return domain.Feedback{}, fmt.Errorf("%w: question and answer are required", domain.ErrInvalidInput)
	}

	fb := domain.Feedback{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		Question:  question,
		Answer:    answer,
		Rating:    rating,
	}
	if err := s.sink.Append(ctx, fb); err != nil {
		return domain.Feedback{}, fmt.Errorf("recording feedback: %w", err)
	}
	logger.Info("Recorded %s feedback %s", rating, fb.ID)
	return fb, nil
}
