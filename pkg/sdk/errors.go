package shopassist

import "github.com/lumenkart/shopassist/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrCatalogNotFound        = domain.ErrCatalogNotFound
	ErrInvalidArgument        = domain.ErrInvalidArgument
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationFailed       = domain.ErrGenerationFailed
)
