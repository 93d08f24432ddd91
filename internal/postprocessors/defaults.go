package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/faqrag/internal/postprocessors/markup"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("markup", buildMarkup)
	r.Register("chunker", buildChunker)
}

// FromSettings builds the ingestion pipeline for the corpus settings.
// Markup is always stripped; records are chunked only when a chunk size
// is configured.
func FromSettings(r *Registry, s domain.CorpusSettings) (*Pipeline, error) {
	p := NewPipeline()

	proc, err := r.Build("markup", nil)
	if err != nil {
		return nil, err
	}
	p.Add(proc)

	if s.ChunkSize > 0 {
		proc, err = r.Build("chunker", map[string]any{
			"chunk_size": s.ChunkSize,
			"overlap":    s.ChunkOverlap,
		})
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}

	return p, nil
}

func buildMarkup(_ map[string]any) (driven.PostProcessor, error) {
	return markup.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per passage (default: 512)
//   - overlap (int): Overlapping characters between passages (default: 50)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		size := getIntFromConfig(cfg, "chunk_size")
		if size < 0 {
			return nil, fmt.Errorf("%w: chunk_size must not be negative", domain.ErrConfiguration)
		}
		if size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if overlap := getIntFromConfig(cfg, "overlap"); overlap >= 0 {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
