package newsrec

import "time"

// Status is the publication state of a document.
type Status string

// Document status constants. Only active, published documents are recommended.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDraft    Status = "draft"
)

// InteractionKind is the type of user action on a document.
type InteractionKind string

// Interaction kind constants.
const (
	KindComment InteractionKind = "comment"
	KindView    InteractionKind = "view"
	KindLike    InteractionKind = "like"
)

// Document is an article in the corpus.
// A zero PublishedAt means the document is unpublished.
type Document struct {
	ID          string
	Title       string
	Body        string
	Status      Status
	Category    string
	PublishedAt time.Time
}

// Activity lists the kinds of action a user took on one document.
type Activity struct {
	DocumentID string
	Kinds      []InteractionKind
}

// Result is a ranked document with its score: a similarity for Similar and
// Recommend, a view count for Popular.
type Result struct {
	Document Document
	Score    float64
}

// EngineStats describes the engine snapshot currently serving queries.
type EngineStats struct {
	Documents int
	Terms     int
	BuiltAt   time.Time
}
