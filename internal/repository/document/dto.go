package document

import (
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

const (
	fieldTitle       = "title"
	fieldBody        = "body"
	fieldStatus      = "status"
	fieldCategory    = "category"
	fieldPublishedAt = "published_at"
)

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
// Every field is always written so an update overwrites stale values.
func buildHashFields(doc *domdoc.Document) map[string]string {
	published := ""
	if doc.IsPublished() {
		published = doc.PublishedAt().UTC().Format(time.RFC3339Nano)
	}
	return map[string]string{
		fieldTitle:       doc.Title(),
		fieldBody:        doc.Body(),
		fieldStatus:      string(doc.Status()),
		fieldCategory:    doc.Category(),
		fieldPublishedAt: published,
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(id string, m map[string]string) (domdoc.Document, error) {
	status, err := domdoc.ParseStatus(m[fieldStatus])
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, err)
	}

	var published time.Time
	if raw := m[fieldPublishedAt]; raw != "" {
		published, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domdoc.Document{}, fmt.Errorf("document %s: parse published_at: %w", id, err)
		}
	}

	return domdoc.Reconstruct(id, m[fieldTitle], m[fieldBody], status, m[fieldCategory], published), nil
}
