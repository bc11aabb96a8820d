package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	// MaxIDLength is the maximum document identifier length.
	MaxIDLength = 256
	// MaxTitleSize is the maximum title size in bytes.
	MaxTitleSize = 512
	// MaxBodySize is the maximum body size in bytes.
	MaxBodySize = 163840 // 160KB
)

// Status is the publication state of a document.
type Status string

const (
	// StatusActive documents are visible to readers.
	StatusActive Status = "active"
	// StatusInactive documents were taken down.
	StatusInactive Status = "inactive"
	// StatusDraft documents were never shown.
	StatusDraft Status = "draft"
)

// ParseStatus converts a raw string into a Status. Empty input means draft.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusDraft:
		return Status(s), nil
	case "":
		return StatusDraft, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Document is an article (immutable value object).
type Document struct {
	id          string
	title       string
	body        string
	status      Status
	category    string
	publishedAt time.Time
}

// New validates and creates a Document.
// Title and body may be empty; missing text is treated as an empty string.
func New(id, title, body string, status Status, category string, publishedAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document ID is required", domain.ErrInvalidDocument)
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("%w: document ID too long (max %d)", domain.ErrInvalidDocument, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf(
			"%w: document ID must be alphanumeric with underscores and hyphens", domain.ErrInvalidDocument,
		)
	}
	if len(title) > MaxTitleSize {
		return Document{}, fmt.Errorf("%w: title too large (max %d bytes)", domain.ErrInvalidDocument, MaxTitleSize)
	}
	if len(body) > MaxBodySize {
		return Document{}, fmt.Errorf("%w: body too large (max %d bytes)", domain.ErrInvalidDocument, MaxBodySize)
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	if status == "" {
		status = StatusDraft
	}

	return Document{
		id:          id,
		title:       title,
		body:        body,
		status:      status,
		category:    category,
		publishedAt: publishedAt.UTC(),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, body string, status Status, category string, publishedAt time.Time) Document {
	return Document{
		id: id, title: title, body: body, status: status,
		category: category, publishedAt: publishedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the headline.
func (d *Document) Title() string { return d.title }

// Body returns the article text.
func (d *Document) Body() string { return d.body }

// Status returns the publication status.
func (d *Document) Status() Status { return d.status }

// Category returns the optional category tag.
func (d *Document) Category() string { return d.category }

// PublishedAt returns the publication time; zero means unpublished.
func (d *Document) PublishedAt() time.Time { return d.publishedAt }

// IsPublished reports whether the document has a publication time.
func (d *Document) IsPublished() bool { return !d.publishedAt.IsZero() }

// Eligible reports whether the document may enter the recommendation corpus:
// it must be active and published.
func (d *Document) Eligible() bool {
	return d.status == StatusActive && d.IsPublished()
}
