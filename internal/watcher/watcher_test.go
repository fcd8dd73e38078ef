package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/propdesk/internal/watcher"
)

func startWatcher(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err)
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("first"), 0o600))

	onChange := startWatcher(t, tokenPath)

	for i := range 10 {
		require.NoError(t, os.WriteFile(tokenPath, []byte(fmt.Sprintf("token-%d", i)), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token")
	otherPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(tokenPath, []byte("t"), 0o600))
	require.NoError(t, os.WriteFile(otherPath, []byte("a: 1"), 0o600))

	onChange := startWatcher(t, tokenPath)

	require.NoError(t, os.WriteFile(otherPath, []byte("a: 2"), 0o600))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_FileReplacedByRename(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("old"), 0o600))

	onChange := startWatcher(t, tokenPath)

	tmp := filepath.Join(dir, "token.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("new"), 0o600))
	require.NoError(t, os.Rename(tmp, tokenPath))

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification after rename into place")
	}
}

func TestWatcher_Stop(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("t"), 0o600))

	w, err := watcher.New(watcher.DefaultConfig(tokenPath))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() timed out")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/tmp/token")
	assert.Equal(t, "/tmp/token", cfg.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
