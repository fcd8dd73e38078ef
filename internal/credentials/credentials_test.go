package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/propdesk/internal/pubsub"
)

func TestLoad_EnvWins(t *testing.T) {
	t.Setenv(EnvToken, "  from-env \n")
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Token())
	assert.NoError(t, s.Watch(t.Context()))
}

func TestLoad_FileTrimmed(t *testing.T) {
	t.Setenv(EnvToken, "")
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("abc123\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", s.Token())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(EnvToken, "")
	s, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, s.Token())
}

func TestReload_PublishesOnlyOnChange(t *testing.T) {
	t.Setenv(EnvToken, "")
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	events := s.Broker().Subscribe(t.Context())

	require.NoError(t, s.Reload())
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v", ev)
	default:
	}

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o600))
	require.NoError(t, s.Reload())

	select {
	case ev := <-events:
		assert.Equal(t, pubsub.CredentialsChangedEvent, ev.Type)
		assert.True(t, ev.Payload.Present)
	case <-time.After(time.Second):
		t.Fatal("expected credentials event")
	}
	assert.Equal(t, "two", s.Token())
}

func TestWatch_ReloadsRewrittenFile(t *testing.T) {
	t.Setenv(EnvToken, "")
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	events := s.Broker().Subscribe(t.Context())
	require.NoError(t, s.Watch(t.Context()))

	require.NoError(t, os.WriteFile(path, []byte("after"), 0o600))

	select {
	case <-events:
	case <-time.After(3 * time.Second):
		t.Fatal("expected reload after rewrite")
	}
	assert.Equal(t, "after", s.Token())
}
