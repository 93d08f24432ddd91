// Package feedback persists answer ratings.
package feedback

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

// Ensure CSVSink implements the interface.
var _ driven.FeedbackSink = (*CSVSink)(nil)

// Header is the first row of a new feedback file.
var Header = []string{"id", "timestamp", "question", "answer", "rating"}

// CSVSink appends feedback records to a CSV file.
// The file is opened per append so external tools can rotate it.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink creates a sink writing to path, creating parent directories.
func NewCSVSink(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create feedback directory: %w", err)
	}
	return &CSVSink{path: path}, nil
}

// Path returns the feedback file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one record, adding the header if the file is new.
func (s *CSVSink) Append(ctx context.Context, fb domain.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat feedback file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	if err := w.Write([]string{
		fb.ID,
		fb.Timestamp.UTC().Format(time.RFC3339),
		fb.Question,
		fb.Answer,
		string(fb.Rating),
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Close is a no-op; files are closed after each append.
func (s *CSVSink) Close() error {
	return nil
}
