package document

import (
	"context"
	"fmt"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

// Service handles document CRUD and keeps the content engine in sync with the corpus.
type Service struct {
	repo         Repository
	interactions InteractionForgetter
	engine       Invalidator
}

// New creates a document service.
func New(repo Repository, interactions InteractionForgetter, engine Invalidator) *Service {
	return &Service{repo: repo, interactions: interactions, engine: engine}
}

// Upsert creates or updates a document.
// Returns true if the document was created, false if updated.
func (s *Service) Upsert(ctx context.Context, doc *domdoc.Document) (bool, error) {
	created, err := s.repo.Upsert(ctx, doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	s.engine.Invalidate()
	return created, nil
}

// Import writes many documents at once.
func (s *Service) Import(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.repo.UpsertBatch(ctx, docs); err != nil {
		return fmt.Errorf("import documents: %w", err)
	}
	s.engine.Invalidate()
	return nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns every document, newest first.
func (s *Service) List(ctx context.Context) ([]domdoc.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ListByCategory returns the documents tagged with category, newest first.
// An empty category lists every document.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domdoc.Document, error) {
	docs, err := s.List(ctx)
	if err != nil || category == "" {
		return docs, err
	}
	out := make([]domdoc.Document, 0, len(docs))
	for i := range docs {
		if docs[i].Category() == category {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// Delete removes a document and forgets every interaction with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.engine.Invalidate()

	if err := s.interactions.ForgetDocument(ctx, id); err != nil {
		return fmt.Errorf("forget interactions: %w", err)
	}
	return nil
}
