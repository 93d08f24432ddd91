package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrConfiguration indicates the process cannot start with the given
	// configuration, for example a missing API key or model identifier.
	ErrConfiguration = errors.New("configuration error")

	// ErrCollectionNotFound indicates the named collection has not been built.
	// Retrieval treats it as "no context available".
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrIndexUnavailable indicates the backing vector store cannot be opened or queried.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrModelMismatch indicates an embedding model other than the one the
	// collection was built with was used for an insert or query.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrDimensionMismatch indicates a vector has a different size than the collection.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGenerationUnavailable indicates the generative model could not be reached
	// or rejected the request.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or not reachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates a provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
