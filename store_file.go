package taskdoc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
)

const lockRetryInterval = 50 * time.Millisecond

var errLockHeld = errors.New("lock held by another process")

// FileStore implements DocumentStore with a single JSON file.
//
// The document lives at $XDG_DATA_HOME/taskdoc/task.json by default. Writes
// go to a temp file that is renamed over the document, so readers always see
// a complete document and Load takes no lock. Saves are serialized across
// processes with a ".lock" sidecar file; concurrent writers still follow
// last-save-wins.
type FileStore struct {
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
	now         func() time.Time
	mu          sync.Mutex
}

// DefaultStoragePath returns $XDG_DATA_HOME/taskdoc/task.json, falling back
// to ~/.local/share/taskdoc/task.json.
func DefaultStoragePath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "taskdoc", "task.json"), nil
}

// NewFileStore creates a file-backed store at path. An empty path selects
// DefaultStoragePath. Nothing is created on disk until the first save.
func NewFileStore(path string, opts ...StoreOption) (*FileStore, error) {
	if path == "" {
		p, err := DefaultStoragePath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := newStoreConfig(opts)
	return &FileStore{
		path:        path,
		lock:        flock.New(path + ".lock"),
		lockTimeout: cfg.lockTimeout,
		now:         cfg.now,
	}, nil
}

// Path returns the location of the document file.
func (f *FileStore) Path() string {
	return f.path
}

// Load implements DocumentStore.
func (f *FileStore) Load(_ context.Context) LoadResult {
	now := f.now()

	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return LoadResult{Document: NewDocument(now), Outcome: LoadNotFound}

	case err != nil:
		return LoadResult{
			Document: NewDocument(now),
			Outcome:  LoadUnreadable,
			Cause:    fmt.Errorf("failed to read document file: %w", err),
		}
	}

	doc, err := decodeDocument(data, now)
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
func (f *FileStore) Save(ctx context.Context, doc *TaskDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &ErrStorage{Op: "create directory", Path: dir, Cause: err}
	}

	release, err := f.lockForWrite(ctx)
	if err != nil {
		return &ErrStorage{Op: "lock", Path: f.lock.Path(), Cause: err}
	}
	defer release()

	doc.Touch(f.now())
	data, err := encodeDocument(doc)
	if err != nil {
		return &ErrStorage{Op: "save", Path: f.path, Cause: err}
	}

	if err := f.writeAtomic(data); err != nil {
		return &ErrStorage{Op: "save", Path: f.path, Cause: err}
	}
	return nil
}

// writeAtomic writes data to a temp file and renames it over the document.
func (f *FileStore) writeAtomic(data []byte) error {
	tempPath := f.path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// lockForWrite acquires the cross-process write lock, retrying with
// exponential backoff until the lock timeout elapses.
func (f *FileStore) lockForWrite(ctx context.Context) (func(), error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = lockRetryInterval
	bo.MaxElapsedTime = f.lockTimeout

	err := backoff.Retry(func() error {
		locked, err := f.lock.TryLock()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !locked {
			return errLockHeld
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, err
	}

	return func() { _ = f.lock.Unlock() }, nil
}

// Verify interface compliance at compile time.
var _ DocumentStore = (*FileStore)(nil)
