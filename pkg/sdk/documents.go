package newsrec

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

// DocumentService manages the corpus. Every write makes the next query
// rebuild the engine snapshot.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Upsert creates or updates a document. Returns true if created.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.upsert", start, err) }()

	d, err := toInternalDocument(doc)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	created, err = s.svc.Upsert(ctx, &d)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Import writes many documents at once. Nothing is written if any document is invalid.
func (s *DocumentService) Import(ctx context.Context, docs []Document) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.import", start, err) }()

	items := make([]domdoc.Document, len(docs))
	for i, d := range docs {
		items[i], err = toInternalDocument(d)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	if err = s.svc.Import(ctx, items); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// List returns every document, newest first.
func (s *DocumentService) List(ctx context.Context) (out []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err) }()

	docs, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out = make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromInternalDocument(d)
	}
	return out, nil
}

// ListByCategory returns the documents tagged with category, newest first.
// An empty category lists every document.
func (s *DocumentService) ListByCategory(ctx context.Context, category string) (out []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list_category", start, err) }()

	docs, err := s.svc.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list documents by category: %w", err)
	}
	out = make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromInternalDocument(d)
	}
	return out, nil
}

// Delete removes a document and forgets every interaction with it.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func toInternalDocument(d Document) (domdoc.Document, error) {
	doc, err := domdoc.New(d.ID, d.Title, d.Body, domdoc.Status(d.Status), d.Category, d.PublishedAt)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("validate document: %w", err)
	}
	return doc, nil
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:          d.ID(),
		Title:       d.Title(),
		Body:        d.Body(),
		Status:      Status(d.Status()),
		Category:    d.Category(),
		PublishedAt: d.PublishedAt(),
	}
}
