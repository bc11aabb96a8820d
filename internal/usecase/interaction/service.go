package interaction

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/newsrec/internal/domain"
	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
)

// Service records which documents a user engaged with.
type Service struct {
	repo Repository
	docs DocumentReader
}

// New creates an interaction service.
func New(repo Repository, docs DocumentReader) *Service {
	return &Service{repo: repo, docs: docs}
}

// Record stores an interaction. The document must exist.
func (s *Service) Record(ctx context.Context, in *dominter.Interaction) error {
	if _, err := s.docs.Get(ctx, in.DocumentID()); err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if err := s.repo.Record(ctx, in); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// List returns the IDs of documents userID interacted with.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", domain.ErrInvalidRequest)
	}
	ids, err := s.repo.DocumentIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return ids, nil
}

// History returns, per document, the kinds of action userID took.
func (s *Service) History(ctx context.Context, userID string) ([]dominter.Activity, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", domain.ErrInvalidRequest)
	}
	history, err := s.repo.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("interaction history: %w", err)
	}
	return history, nil
}
