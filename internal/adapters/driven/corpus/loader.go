// Package corpus reads the question/answer corpus from CSV files.
package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.CorpusLoader = (*Loader)(nil)

// Column headers, matched case-insensitively.
const (
	QuestionColumn = "Question"
	AnswerColumn   = "Answer"
)

// SourceIDPrefix is prepended to the 1-based data row number.
const SourceIDPrefix = "FAQ-"

// Loader reads a CSV file with Question and Answer columns.
type Loader struct{}

// NewLoader creates a CSV corpus loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load opens path and parses it with Parse.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: corpus file %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	return l.Parse(ctx, f)
}

// Parse reads records from r. Source ids are assigned from the data row
// number before incomplete rows are dropped, so ids stay stable when a row
// is fixed later.
func (l *Loader) Parse(ctx context.Context, r io.Reader) ([]domain.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: corpus has no header row", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	qCol, aCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, QuestionColumn):
			qCol = i
		case strings.EqualFold(name, AnswerColumn):
			aCol = i
		}
	}
	if qCol < 0 || aCol < 0 {
		return nil, fmt.Errorf("%w: corpus needs %q and %q columns", domain.ErrInvalidInput, QuestionColumn, AnswerColumn)
	}

	var docs []domain.Document
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row %d: %w", row, err)
		}

		question := field(record, qCol)
		answer := field(record, aCol)
		if question == "" || answer == "" {
			continue
		}

		docs = append(docs, domain.Document{
			Text:     question + " " + answer,
			SourceID: fmt.Sprintf("%s%d", SourceIDPrefix, row),
		})
	}

	return docs, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
