// Package local is an offline embedder that hashes word features into a
// fixed-size vector. It needs no model download and no fitted vocabulary,
// so the same text always maps to the same vector across processes.
package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ModelPrefix prefixes the model id; the dimension count is appended.
const ModelPrefix = "local-hash"

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// EmbeddingService is the hashing embedder.
type EmbeddingService struct {
	dimensions int
	stopwords  map[string]struct{}
}

// NewEmbeddingService creates a hashing embedder with the given vector size.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = domain.DefaultLocalDimensions
	}
	return &EmbeddingService{
		dimensions: dimensions,
		stopwords:  defaultStopwords(),
	}
}

// Embed maps text to an L2-normalised vector. Text with no usable tokens
// maps to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[int]float64)
	tokens := s.tokenize(text)
	for i, tok := range tokens {
		s.add(counts, tok, 1)
		// Adjacent pairs add a little word-order signal
		if i > 0 {
			s.add(counts, tokens[i-1]+" "+tok, 0.5)
		}
	}

	vec := make([]float32, s.dimensions)
	var norm float64
	for idx, c := range counts {
		if c == 0 {
			continue
		}
		// Sublinear tf keeps repeated words from dominating; sign may be negative
		w := math.Copysign(1+math.Log(math.Abs(c)), c)
		vec[idx] = float32(w)
		norm += w * w
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec, nil
}

func (s *EmbeddingService) add(counts map[int]float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	counts[idx] += weight
}

func (s *EmbeddingService) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns "local-hash-<dims>" so that collections built with a
// different size are rejected as a model mismatch.
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("%s-%d", ModelPrefix, s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
		"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its",
		"this", "that", "these", "those", "from", "so", "such", "into", "about", "than", "too",
		"very", "can", "will", "just", "should", "now", "do", "does", "did", "i", "you", "my",
		"your", "me", "we", "our", "what", "which", "who", "how", "there", "their", "they",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
