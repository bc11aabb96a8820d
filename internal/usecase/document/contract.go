package document

import (
	"context"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, doc *domdoc.Document) (created bool, err error)
	UpsertBatch(ctx context.Context, docs []domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

// InteractionForgetter drops a deleted document from user histories.
type InteractionForgetter interface {
	ForgetDocument(ctx context.Context, documentID string) error
}

// Invalidator is notified whenever the corpus changes.
type Invalidator interface {
	Invalidate()
}
