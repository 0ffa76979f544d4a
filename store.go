package taskdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DocumentStore is the persistence port for the task document.
//
// The default implementation (FileStore) keeps the document as one
// pretty-printed JSON file. MemoryStore keeps it in memory for tests.
type DocumentStore interface {
	// Load returns the stored document. It never fails: when nothing is
	// stored, or the stored content cannot be read or parsed, a fresh
	// default document is returned and the outcome says why.
	Load(ctx context.Context) LoadResult

	// Save refreshes the document's derived fields (UpdatedAt and
	// Progress) in place and persists it as one unit.
	Save(ctx context.Context, doc *TaskDocument) error
}

// LoadOutcome classifies how a Load was satisfied.
type LoadOutcome int

const (
	// LoadFound means a stored document was read and parsed.
	LoadFound LoadOutcome = iota

	// LoadNotFound means nothing was stored yet.
	LoadNotFound

	// LoadCorrupt means stored content exists but is not a valid
	// document. A default document is returned in its place.
	LoadCorrupt

	// LoadUnreadable means the storage medium could not be read (for
	// example, permission denied). A default document is returned.
	LoadUnreadable
)

// String returns the outcome name used in logs.
func (o LoadOutcome) String() string {
	switch o {
	case LoadFound:
		return "found"
	case LoadNotFound:
		return "not_found"
	case LoadCorrupt:
		return "corrupt"
	case LoadUnreadable:
		return "unreadable"
	}
	return fmt.Sprintf("LoadOutcome(%d)", int(o))
}

// Degraded reports whether stored content existed but was discarded.
func (o LoadOutcome) Degraded() bool {
	return o == LoadCorrupt || o == LoadUnreadable
}

// LoadResult is the result of DocumentStore.Load.
type LoadResult struct {
	// Document is never nil.
	Document *TaskDocument

	Outcome LoadOutcome

	// Cause explains a degraded outcome. Nil for found and not found.
	Cause error
}

var errEmptyDocument = errors.New("stored document is empty")

// decodeDocument parses and validates stored bytes. Missing fields take
// their defaults; a missing creation time becomes now.
func decodeDocument(data []byte, now time.Time) (*TaskDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyDocument
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if err := validateDocumentSchema(raw); err != nil {
		return nil, err
	}

	var doc TaskDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc.normalize()
	if doc.Metadata.CreatedAt.IsZero() {
		doc.Metadata.CreatedAt = now
	}
	if doc.Metadata.UpdatedAt.IsZero() {
		doc.Metadata.UpdatedAt = doc.Metadata.CreatedAt
	}
	return &doc, nil
}

// encodeDocument renders the document as 2-space indented JSON with a
// trailing newline.
func encodeDocument(doc *TaskDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// MemoryStore is an in-memory DocumentStore for testing.
//
// The document is held in its serialized form so that loads and saves go
// through the same encoding, decoding and validation as FileStore.
// Thread-safe for concurrent access.
type MemoryStore struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
	saves   int
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	cfg := newStoreConfig(opts)
	return &MemoryStore{now: cfg.now}
}

// Load implements DocumentStore.
func (m *MemoryStore) Load(_ context.Context) LoadResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	switch {
	case m.loadErr != nil:
		return LoadResult{
			Document: NewDocument(now),
			Outcome:  LoadUnreadable,
			Cause:    m.loadErr,
		}
	case m.data == nil:
		return LoadResult{Document: NewDocument(now), Outcome: LoadNotFound}
	}

	doc, err := decodeDocument(m.data, now)
	if err != nil {
		return LoadResult{
			Document: NewDocument(now),
			Outcome:  LoadCorrupt,
			Cause:    err,
		}
	}
	return LoadResult{Document: doc, Outcome: LoadFound}
}

// Save implements DocumentStore.
func (m *MemoryStore) Save(_ context.Context, doc *TaskDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return &ErrStorage{Op: "save", Cause: m.saveErr}
	}

	doc.Touch(m.now())
	data, err := encodeDocument(doc)
	if err != nil {
		return &ErrStorage{Op: "save", Cause: err}
	}
	m.data = data
	m.saves++
	return nil
}

// Raw returns a copy of the stored bytes, or nil when nothing is stored.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}
	return append([]byte{}, m.data...)
}

// SetRaw replaces the stored bytes. Pass nil to simulate an absent document.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data == nil {
		m.data = nil
		return
	}
	m.data = append([]byte{}, data...)
}

// FailLoad makes subsequent loads report LoadUnreadable with err. Pass nil
// to restore normal behavior.
func (m *MemoryStore) FailLoad(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// FailSave makes subsequent saves fail with err. Pass nil to restore
// normal behavior.
func (m *MemoryStore) FailSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves returns the number of successful saves.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Verify interface compliance at compile time.
var _ DocumentStore = (*MemoryStore)(nil)
