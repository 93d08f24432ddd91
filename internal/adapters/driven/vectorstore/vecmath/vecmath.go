// Package vecmath holds the distance metric and vector encoding shared by
// the vector stores and the embedding cache.
package vecmath

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// SquaredL2 returns the squared Euclidean distance between a and b.
// The vectors must have equal length.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Nearest sorts hits ascending by distance and truncates to k. Hits must
// arrive in insertion order; the stable sort keeps that order for ties.
func Nearest(hits []domain.VectorHit, k int) []domain.VectorHit {
	if k <= 0 {
		return []domain.VectorHit{}
	}
	slices.SortStableFunc(hits, func(a, b domain.VectorHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Encode serialises vec as little-endian float32.
func Encode(vec []float32) []byte {
	b := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

// Decode is the inverse of Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return vec, nil
}

// EntryID formats the store-assigned id for an insertion sequence number.
func EntryID(seq int64) string {
	return fmt.Sprintf("doc_%d", seq)
}
