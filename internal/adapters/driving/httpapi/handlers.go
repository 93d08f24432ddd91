package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAsk(w, r)
	if !ok {
		return
	}

	answer := s.ports.Assistant.Ask(r.Context(), req)
	s.metrics.observeAnswer("buffered", answer.NoContext, len(answer.Passages))

	writeJSON(w, http.StatusOK, newAskResponse(answer))
}

func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAsk(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	s.metrics.streaming.Inc()
	defer s.metrics.streaming.Dec()

	answer, fragments := s.ports.Assistant.AskStream(r.Context(), req)
	for fragment := range fragments {
		writeEvent(w, flusher, "", map[string]any{"content": fragment})
	}
	s.metrics.observeAnswer("stream", answer.NoContext, len(answer.Passages))

	if r.Context().Err() != nil {
		return
	}
	writeEvent(w, flusher, "done", map[string]any{
		"standalone_query": answer.StandaloneQuery,
		"language":         answer.Language,
		"sources":          answer.SourceIDs(),
		"no_context":       answer.NoContext,
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.ports.Feedback == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "feedback is not enabled", nil)
		return
	}

	var req FeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	fb, err := s.ports.Feedback.Record(r.Context(), req.Question, req.Answer, domain.Rating(req.Rating))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	default:
		s.log.Error("recording feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "could not record feedback", nil)
		return
	}

	s.metrics.feedback.WithLabelValues(string(fb.Rating)).Inc()
	writeJSON(w, http.StatusCreated, FeedbackResponse{ID: fb.ID, Timestamp: fb.Timestamp})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.ports.Index == nil {
		writeJSON(w, http.StatusOK, IndexResponse{})
		return
	}

	coll, err := s.ports.Index.Status(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, IndexResponse{
			Built:      true,
			Collection: coll.Name,
			ModelID:    coll.ModelID,
			Dimensions: coll.Dimensions,
			Count:      coll.Count,
			CreatedAt:  coll.CreatedAt,
		})
	case errors.Is(err, domain.ErrCollectionNotFound):
		writeJSON(w, http.StatusOK, IndexResponse{})
	default:
		s.log.Warn("index status", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "index_unavailable", err.Error(), nil)
	}
}

func (s *Server) decodeAsk(w http.ResponseWriter, r *http.Request) (domain.AskRequest, bool) {
	var req AskRequest
	if !s.decode(w, r, &req) {
		return domain.AskRequest{}, false
	}
	return req.toDomain(s.ports.Chat.MaxHistoryTurns), true
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error(), nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", validationFields(err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, msg string, fields map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg, Fields: fields})
}

// writeEvent emits one server-sent event. Payloads are JSON so fragments
// containing newlines survive the line-oriented framing.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data map[string]any) {
	payload, _ := json.Marshal(data) //nolint:errcheck
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
