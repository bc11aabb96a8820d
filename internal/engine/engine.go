// Package engine implements the TF-IDF content engine: it vectorizes a fixed corpus
// and ranks documents by cosine similarity.
//
// An Engine is built once from a snapshot and never mutated afterwards, so a single
// instance may be queried from many goroutines. Staleness is handled by building a
// new Engine.
package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

// DefaultLimit is the number of results returned when a query asks for n <= 0.
const DefaultLimit = 5

// Document is a corpus entry. Only eligible documents should be passed to Build.
type Document struct {
	ID    string
	Title string
	Body  string
}

// Match is a ranked document.
type Match struct {
	ID    string
	Score float64
}

// Engine holds the TF-IDF model of a corpus.
type Engine struct {
	docs    []Document
	index   map[string]int
	vectors []Vector
	norms   []float64
	idf     map[string]float64
	vocab   []string
}

// Build vectorizes docs. The order of docs is the tie-break order of every ranking.
// Empty or duplicate identifiers are rejected.
func Build(docs []Document) (*Engine, error) {
	e := &Engine{
		docs:  make([]Document, len(docs)),
		index: make(map[string]int, len(docs)),
		idf:   make(map[string]float64),
	}
	copy(e.docs, docs)

	for i, d := range e.docs {
		if strings.TrimSpace(d.ID) == "" {
			return nil, fmt.Errorf("%w: document at position %d has an empty ID", domain.ErrInvalidDocument, i)
		}
		if prev, dup := e.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate ID %q at positions %d and %d",
				domain.ErrInvalidDocument, d.ID, prev, i)
		}
		e.index[d.ID] = i
	}

	if len(e.docs) == 0 {
		return e, nil
	}

	counts := make([]map[string]int, len(e.docs))
	totals := make([]int, len(e.docs))
	docFreq := make(map[string]int)

	for i, d := range e.docs {
		terms := Terms(d.Title + " " + d.Body)
		tc := make(map[string]int, len(terms))
		for _, t := range terms {
			tc[t]++
		}
		for t := range tc {
			docFreq[t]++
		}
		counts[i] = tc
		totals[i] = len(terms)
	}

	// ln(N/(df+1)) is zero for df == N-1 and negative for df == N.
	n := float64(len(e.docs))
	e.vocab = make([]string, 0, len(docFreq))
	for t, df := range docFreq {
		e.idf[t] = math.Log(n / float64(df+1))
		e.vocab = append(e.vocab, t)
	}
	sort.Strings(e.vocab)

	e.vectors = make([]Vector, len(e.docs))
	e.norms = make([]float64, len(e.docs))
	for i, tc := range counts {
		v := make(Vector, len(tc))
		if totals[i] > 0 {
			total := float64(totals[i])
			for t, c := range tc {
				v[t] = float64(c) / total * e.idf[t]
			}
		}
		e.vectors[i] = v
		e.norms[i] = v.Norm()
	}

	return e, nil
}

// Len returns the number of documents in the corpus.
func (e *Engine) Len() int { return len(e.docs) }

// Documents returns a copy of the corpus snapshot in build order.
func (e *Engine) Documents() []Document {
	out := make([]Document, len(e.docs))
	copy(out, e.docs)
	return out
}

// Vocabulary returns the sorted set of terms seen at build time.
func (e *Engine) Vocabulary() []string {
	out := make([]string, len(e.vocab))
	copy(out, e.vocab)
	return out
}

// IDF returns the inverse document frequency of term.
func (e *Engine) IDF(term string) (float64, bool) {
	w, ok := e.idf[term]
	return w, ok
}

// Vector returns a copy of the TF-IDF vector of the document with the given ID.
func (e *Engine) Vector(id string) (Vector, bool) {
	i, ok := e.index[id]
	if !ok {
		return nil, false
	}
	v := make(Vector, len(e.vectors[i]))
	for t, w := range e.vectors[i] {
		v[t] = w
	}
	return v, true
}

// Contains reports whether id is part of the corpus.
func (e *Engine) Contains(id string) bool {
	_, ok := e.index[id]
	return ok
}

// Similar ranks every other document by cosine similarity to the document id.
// An unknown id yields no matches.
func (e *Engine) Similar(id string, n int) []Match {
	target, ok := e.index[id]
	if !ok {
		return nil
	}

	matches := make([]Match, 0, len(e.docs)-1)
	for i := range e.docs {
		if i == target {
			continue
		}
		matches = append(matches, Match{
			ID:    e.docs[i].ID,
			Score: cosineWithNorms(e.vectors[target], e.vectors[i], e.norms[target], e.norms[i]),
		})
	}
	return topN(matches, n)
}

// Recommend ranks documents outside interacted by their best cosine similarity to any
// interacted document. Documents without a positive score are not recommended.
func (e *Engine) Recommend(interacted []string, n int) []Match {
	if len(interacted) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(interacted))
	sources := make([]int, 0, len(interacted))
	for _, id := range interacted {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if i, ok := e.index[id]; ok {
			sources = append(sources, i)
		}
	}
	if len(sources) == 0 {
		return nil
	}

	var matches []Match
	for i, d := range e.docs {
		if _, skip := seen[d.ID]; skip {
			continue
		}
		var best float64
		for _, s := range sources {
			if sim := cosineWithNorms(e.vectors[i], e.vectors[s], e.norms[i], e.norms[s]); sim > best {
				best = sim
			}
		}
		if best > 0 {
			matches = append(matches, Match{ID: d.ID, Score: best})
		}
	}
	return topN(matches, n)
}

// topN stable-sorts matches by descending score and truncates to n (DefaultLimit if n <= 0).
func topN(matches []Match, n int) []Match {
	if n <= 0 {
		n = DefaultLimit
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
