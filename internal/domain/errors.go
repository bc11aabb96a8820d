package domain

import (
	"errors"
)

// KeyPrefix is the storage key namespace for all newsrec data.
const KeyPrefix = "newsrec:"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a malformed document (bad or duplicate identifier, oversized fields).
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidInteraction signals a malformed user interaction.
	ErrInvalidInteraction = errors.New("invalid interaction")
	// ErrInvalidRequest signals malformed query parameters.
	ErrInvalidRequest = errors.New("invalid request")
)
