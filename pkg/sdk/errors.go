package newsrec

import "github.com/kailas-cloud/newsrec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound   = domain.ErrDocumentNotFound
	ErrInvalidDocument    = domain.ErrInvalidDocument
	ErrInvalidInteraction = domain.ErrInvalidInteraction
	ErrInvalidRequest     = domain.ErrInvalidRequest
)
