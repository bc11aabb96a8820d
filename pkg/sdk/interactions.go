package newsrec

import (
	"context"
	"fmt"
	"time"

	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
)

// InteractionService records what users read.
type InteractionService struct {
	svc interactionUseCase
	obs *observer
}

// Record notes that userID acted on documentID. The document must exist.
// An empty kind counts as a comment.
func (s *InteractionService) Record(
	ctx context.Context, userID, documentID string, kind InteractionKind,
) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("interaction.record", start, err) }()

	in, err := dominter.New(userID, documentID, dominter.Kind(kind))
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	if err = s.svc.Record(ctx, &in); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// List returns the sorted IDs of documents userID interacted with.
func (s *InteractionService) List(ctx context.Context, userID string) (ids []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("interaction.list", start, err) }()

	ids, err = s.svc.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return ids, nil
}

// History returns, per document, the kinds of action userID took, sorted by document ID.
func (s *InteractionService) History(ctx context.Context, userID string) (out []Activity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("interaction.history", start, err) }()

	history, err := s.svc.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("interaction history: %w", err)
	}
	out = make([]Activity, len(history))
	for i, a := range history {
		kinds := make([]InteractionKind, len(a.Kinds))
		for j, k := range a.Kinds {
			kinds[j] = InteractionKind(k)
		}
		out[i] = Activity{DocumentID: a.DocumentID, Kinds: kinds}
	}
	return out, nil
}
