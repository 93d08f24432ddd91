// Package stream holds the wire readers shared by the streaming LLM adapters.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// ErrTruncated is reported when a stream ends without its terminator.
var ErrTruncated = errors.New("stream ended before completion")

// maxLine bounds a single SSE or NDJSON line.
const maxLine = 1 << 20

// Send delivers c unless ctx is cancelled first.
func Send(ctx context.Context, ch chan<- domain.StreamChunk, c domain.StreamChunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// SSEHandler receives one server-sent event. Returning done=true ends the stream.
type SSEHandler func(event, data string) (done bool, err error)

// ReadSSE parses a text/event-stream body. Comments and blank lines are
// skipped; the most recent "event:" applies to the following "data:" line.
// A body that ends before the handler reports done yields ErrTruncated.
func ReadSSE(r io.Reader, fn SSEHandler) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	event := ""
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "" || strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			done, err := fn(event, data)
			if err != nil || done {
				return err
			}
			event = ""
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return ErrTruncated
}

// ReadNDJSON decodes one JSON object per line into a fresh T and calls fn.
func ReadNDJSON[T any](r io.Reader, fn func(T) (done bool, err error)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return err
		}
		done, err := fn(v)
		if err != nil || done {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return ErrTruncated
}

// Pump runs read in a goroutine and turns its callbacks into chunks on the
// returned channel, which is closed after a Done or Err chunk. body is
// closed when reading ends.
func Pump(ctx context.Context, body io.ReadCloser, read func(emit func(string) bool) error) <-chan domain.StreamChunk {
	ch := make(chan domain.StreamChunk)
	go func() {
		defer close(ch)
		defer body.Close()

		emit := func(s string) bool {
			if s == "" {
				return true
			}
			return Send(ctx, ch, domain.StreamChunk{Content: s})
		}
		if err := read(emit); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			Send(ctx, ch, domain.StreamChunk{Err: err, Done: true})
			return
		}
		Send(ctx, ch, domain.StreamChunk{Done: true})
	}()
	return ch
}
