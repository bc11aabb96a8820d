package interaction

import (
	"context"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
)

// Repository defines the storage contract for interactions.
type Repository interface {
	Record(ctx context.Context, in *dominter.Interaction) error
	DocumentIDs(ctx context.Context, userID string) ([]string, error)
	History(ctx context.Context, userID string) ([]dominter.Activity, error)
}

// DocumentReader checks that an interaction targets a stored document.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}
