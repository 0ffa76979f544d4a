package taskdoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "task.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- WatchFile(ctx, path, func() { changed <- struct{}{} })
	}()

	// The watch may not be registered yet when the first save lands, so
	// keep saving until a change is observed.
	seen := false
	for attempt := 0; attempt < 20 && !seen; attempt++ {
		require.NoError(t, store.Save(context.Background(), NewDocument(time.Now())))
		select {
		case <-changed:
			seen = true
		case <-time.After(300 * time.Millisecond):
		}
	}
	require.True(t, seen, "no change observed")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WatchFile did not return after cancel")
	}
}

func TestWatchFileIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "task.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	go func() {
		_ = WatchFile(ctx, path, func() { changed <- struct{}{} })
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600))

	select {
	case <-changed:
		t.Fatal("change reported for unrelated file")
	case <-time.After(400 * time.Millisecond):
	}
}
