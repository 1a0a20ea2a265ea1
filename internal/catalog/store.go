// Package catalog owns the booklet catalog document: the faculty and year
// vocabularies and the booklet records, persisted as one JSON value.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"toubkal-lib/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DocumentKey is the KV key of the catalog document.
const DocumentKey = "toubkalSettings"

// Store serializes every read-modify-write of the document. Run exactly one
// Store per process over a given KV; separate processes sharing the medium
// still race with last-write-wins on the whole document.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	newID func() string
	log   log.FieldLogger
}

type Option func(*Store)

// WithIDGenerator replaces the booklet id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l log.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		newID: newBookletID,
		log:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newBookletID returns a time-ordered UUIDv7.
func newBookletID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load returns the stored document. A missing or unparsable document yields
// Defaults; only a failing storage read is an error.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (Settings, error) {
	raw, found, err := s.kv.Get(ctx, DocumentKey)
	if err != nil {
		return Settings{}, fmt.Errorf("load catalog: %w", err)
	}
	if !found {
		return Defaults(), nil
	}

	var doc struct {
		Faculties *[]string `json:"faculties"`
		Years     *[]string `json:"years"`
		Booklets  []Booklet `json:"booklets"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.log.WithError(err).Warn("catalog document unreadable, serving defaults")
		return Defaults(), nil
	}

	out := Defaults()
	if doc.Faculties != nil {
		out.Faculties = *doc.Faculties
	}
	if doc.Years != nil {
		out.Years = *doc.Years
	}
	if doc.Booklets != nil {
		out.Booklets = doc.Booklets
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, doc Settings) error {
	if doc.Faculties == nil {
		doc.Faculties = []string{}
	}
	if doc.Years == nil {
		doc.Years = []string{}
	}
	if doc.Booklets == nil {
		doc.Booklets = []Booklet{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.kv.Set(ctx, DocumentKey, string(raw)); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// update runs fn on a fresh copy of the document and writes it back when fn
// reports a change.
func (s *Store) update(ctx context.Context, fn func(doc *Settings) (bool, error)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	before := doc.clone()

	changed, err := fn(&doc)
	if err != nil {
		return before, err
	}
	if !changed {
		return doc, nil
	}
	if err := s.save(ctx, doc); err != nil {
		return before, err
	}
	return doc, nil
}

// UpsertBooklet validates form and stores it. A form id naming an existing
// booklet replaces that record in place; anything else appends a new record
// with a fresh id. An invalid form returns *ValidationError and changes nothing.
func (s *Store) UpsertBooklet(ctx context.Context, form BookletForm) (Settings, Booklet, error) {
	pages, err := form.Validate()
	if err != nil {
		doc, loadErr := s.Load(ctx)
		if loadErr != nil {
			return Settings{}, Booklet{}, loadErr
		}
		return doc, Booklet{}, err
	}

	b := Booklet{
		Title:   form.Title,
		Subject: form.Subject,
		Faculty: form.Faculty,
		Year:    form.Year,
		Pages:   pages,
	}
	doc, err := s.update(ctx, func(doc *Settings) (bool, error) {
		if form.ID != "" {
			if i := indexOf(doc.Booklets, form.ID); i >= 0 {
				b.ID = form.ID
				doc.Booklets[i] = b
				return true, nil
			}
		}
		b.ID = s.newID()
		doc.Booklets = append(doc.Booklets, b)
		return true, nil
	})
	if err != nil {
		return doc, Booklet{}, err
	}
	return doc, b, nil
}

// DeleteBooklet removes the booklet with id. Unknown ids are not an error.
func (s *Store) DeleteBooklet(ctx context.Context, id string) (Settings, error) {
	return s.update(ctx, func(doc *Settings) (bool, error) {
		i := indexOf(doc.Booklets, id)
		if i < 0 {
			return false, nil
		}
		doc.Booklets = slices.Delete(doc.Booklets, i, i+1)
		return true, nil
	})
}

// Booklet looks up a single record.
func (s *Store) Booklet(ctx context.Context, id string) (Booklet, bool, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return Booklet{}, false, err
	}
	if i := indexOf(doc.Booklets, id); i >= 0 {
		return doc.Booklets[i], true, nil
	}
	return Booklet{}, false, nil
}

// AddTaxonomyEntry appends the trimmed value to the kind's list unless it is
// empty or already present (exact, case-sensitive match).
func (s *Store) AddTaxonomyEntry(ctx context.Context, kind Kind, value string) (Settings, error) {
	value = strings.TrimSpace(value)
	return s.update(ctx, func(doc *Settings) (bool, error) {
		list := doc.taxonomy(kind)
		if value == "" || slices.Contains(*list, value) {
			return false, nil
		}
		*list = append(*list, value)
		return true, nil
	})
}

// RemoveTaxonomyEntry drops value from the kind's list. Booklets that name
// the removed value keep it.
func (s *Store) RemoveTaxonomyEntry(ctx context.Context, kind Kind, value string) (Settings, error) {
	return s.update(ctx, func(doc *Settings) (bool, error) {
		list := doc.taxonomy(kind)
		i := slices.Index(*list, value)
		if i < 0 {
			return false, nil
		}
		*list = slices.Delete(*list, i, i+1)
		return true, nil
	})
}

// Replace overwrites the whole document, as a backup restore does.
func (s *Store) Replace(ctx context.Context, doc Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc.clone())
}

func indexOf(booklets []Booklet, id string) int {
	return slices.IndexFunc(booklets, func(b Booklet) bool { return b.ID == id })
}
