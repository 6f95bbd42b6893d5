package domain

import "errors"

var (
	// ErrInvalidDimension signals a non-positive vector dimension at construction.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrDimensionMismatch signals a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidArgument signals a rejected argument (e.g. k < 1).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBatchMismatch signals a vectors/records count mismatch in a batch insert.
	ErrBatchMismatch = errors.New("batch length mismatch")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCatalogNotFound signals a missing catalog.
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrStoreDiverged signals that vector and metadata stores disagree on size.
	// Never recoverable; treated as a programming-error assertion.
	ErrStoreDiverged = errors.New("vector and metadata stores diverged")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a response generation failure.
	ErrGenerationFailed = errors.New("response generation failed")
)
