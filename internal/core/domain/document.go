package domain

import "time"

// Document is one unit of the FAQ corpus.
// It is immutable once indexed.
type Document struct {
	// Text is the passage body, question and answer joined by a space.
	Text string

	// SourceID is the human-readable citation key, unique within a corpus
	// version (for example "FAQ-12").
	SourceID string
}

// IndexedEntry is a Document together with its embedding, owned by the vector store.
type IndexedEntry struct {
	// ID is assigned by the store and is distinct from SourceID.
	ID string

	// Seq is the insertion sequence within the collection generation.
	// Ties in distance are broken by ascending Seq.
	Seq int64

	// Embedding was produced by the model the collection is tagged with.
	Embedding []float32

	// Document is the indexed passage.
	Document Document
}

// VectorHit is a single nearest-neighbour result from the vector store.
type VectorHit struct {
	Entry IndexedEntry

	// Distance is the squared Euclidean distance to the query. Lower is closer.
	Distance float64
}

// RetrievedPassage is a context passage handed to the prompt composer.
// It is produced per query and never persisted.
type RetrievedPassage struct {
	Text     string
	SourceID string
	Distance float64
}

// Collection describes the live generation of a named collection.
type Collection struct {
	// Name is the logical collection name, for example "medical_faqs".
	Name string

	// ModelID is the embedding model every entry was produced with.
	ModelID string

	// Dimensions is the embedding vector size.
	Dimensions int

	// Generation names the physical fill currently published under Name.
	Generation string

	// Count is the number of entries in the live generation.
	Count int

	// CreatedAt is when the live generation was staged.
	CreatedAt time.Time
}

// IsEmpty reports whether the collection holds no entries.
func (c Collection) IsEmpty() bool {
	return c.Count == 0
}
