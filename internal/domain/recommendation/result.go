package recommendation

import domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"

// Result is a recommended document with its similarity score.
type Result struct {
	document domdoc.Document
	score    float64
}

// New creates a recommendation result.
func New(doc domdoc.Document, score float64) Result {
	return Result{document: doc, score: score}
}

// Document returns the recommended document.
func (r *Result) Document() domdoc.Document { return r.document }

// ID returns the recommended document identifier.
func (r *Result) ID() string { return r.document.ID() }

// Score returns the cosine similarity that produced the recommendation.
func (r *Result) Score() float64 { return r.score }
