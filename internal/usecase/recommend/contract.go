package recommend

import (
	"context"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

// CorpusReader supplies the currently eligible documents in corpus order.
type CorpusReader interface {
	ListEligible(ctx context.Context) ([]domdoc.Document, error)
}

// InteractionReader supplies the documents a user interacted with and how often
// documents were viewed.
type InteractionReader interface {
	DocumentIDs(ctx context.Context, userID string) ([]string, error)
	ViewCounts(ctx context.Context, ids []string) ([]int64, error)
}
