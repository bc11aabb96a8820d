// Package corpus reads document collections and reader histories from YAML files.
// The CLI uses them to import data into a store and to run offline queries.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
)

// Epoch is the publication time given to entries without published_at.
var Epoch = time.Unix(0, 0).UTC()

// File is the on-disk corpus format.
type File struct {
	Documents    []DocumentEntry    `yaml:"documents"`
	Interactions []InteractionEntry `yaml:"interactions"`
}

// DocumentEntry is one article in a corpus file.
type DocumentEntry struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Body        string     `yaml:"body"`
	Status      string     `yaml:"status"` // default: active
	Category    string     `yaml:"category"`
	PublishedAt *time.Time `yaml:"published_at"`
}

// InteractionEntry records that a user engaged with a document.
type InteractionEntry struct {
	User     string `yaml:"user"`
	Document string `yaml:"document"`
	Kind     string `yaml:"kind"`
}

// Load reads and parses a corpus file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes corpus YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	return &f, nil
}

// DomainDocuments validates every entry and converts it into a document.
func (f *File) DomainDocuments() ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, 0, len(f.Documents))
	seen := make(map[string]struct{}, len(f.Documents))
	for i, e := range f.Documents {
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("documents[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}

		doc, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("documents[%d]: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DomainInteractions validates every interaction entry.
func (f *File) DomainInteractions() ([]dominter.Interaction, error) {
	out := make([]dominter.Interaction, 0, len(f.Interactions))
	for i, e := range f.Interactions {
		in, err := dominter.New(e.User, e.Document, dominter.Kind(e.Kind))
		if err != nil {
			return nil, fmt.Errorf("interactions[%d]: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (e DocumentEntry) toDomain() (domdoc.Document, error) {
	raw := e.Status
	if raw == "" {
		raw = string(domdoc.StatusActive)
	}
	status, err := domdoc.ParseStatus(raw)
	if err != nil {
		return domdoc.Document{}, err
	}

	publishedAt := Epoch
	if e.PublishedAt != nil {
		publishedAt = *e.PublishedAt
	}

	doc, err := domdoc.New(e.ID, e.Title, e.Body, status, e.Category, publishedAt)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document %q: %w", e.ID, err)
	}
	return doc, nil
}
