package domain

import "errors"

var (
	// ErrPatentNotFound signals an unknown document number.
	ErrPatentNotFound = errors.New("patent not found")
	// ErrInvalidCriteria signals malformed search criteria.
	ErrInvalidCriteria = errors.New("invalid search criteria")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexMisaligned signals an embedding matrix out of step with the corpus.
	ErrIndexMisaligned = errors.New("embedding index misaligned with corpus")
	// ErrNotReady signals that the corpus or embedding index is not loaded yet.
	ErrNotReady = errors.New("engine not ready")
)
