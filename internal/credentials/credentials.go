// Package credentials supplies the bearer token for API calls.
//
// The token is written by an external login tool. propdesk only reads it:
// from PROPDESK_TOKEN when set, else from the token file, and reloads the
// file when it changes on disk.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/pubsub"
	"github.com/zjrosen/propdesk/internal/watcher"
)

// EnvToken overrides the token file.
const EnvToken = "PROPDESK_TOKEN"

// Changed is the payload of a CredentialsChangedEvent.
type Changed struct {
	// Present reports whether a non-empty token is now available.
	Present bool
}

// Store holds the current token. It satisfies api.TokenSource.
type Store struct {
	mu      sync.RWMutex
	token   string
	path    string
	fromEnv bool
	broker  *pubsub.Broker[Changed]
}

// Load reads the token from the environment or from path. A missing token
// file is not an error; requests simply go out without a usable token and
// the API answers 401.
func Load(path string) (*Store, error) {
	s := &Store{path: path, broker: pubsub.NewBroker[Changed]()}
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		s.token = env
		s.fromEnv = true
		log.Debug(log.CatAuth, "Using token from environment")
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Path returns the token file path.
func (s *Store) Path() string { return s.path }

// Broker publishes a CredentialsChangedEvent after every reload that
// changed the token.
func (s *Store) Broker() *pubsub.Broker[Changed] { return s.broker }

// Reload re-reads the token file.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path) //nolint:gosec // G304: path from config
	if errors.Is(err, os.ErrNotExist) {
		log.Warn(log.CatAuth, "Token file not found", "path", s.path)
		data = nil
	} else if err != nil {
		log.ErrorErr(log.CatAuth, "Failed to read token file", err, "path", s.path)
		return fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	s.mu.Lock()
	changed := token != s.token
	s.token = token
	s.mu.Unlock()

	if changed {
		log.Info(log.CatAuth, "Token reloaded", "path", s.path, "present", token != "")
		s.broker.Publish(pubsub.CredentialsChangedEvent, Changed{Present: token != ""})
	}
	return nil
}

// Watch reloads the token whenever the token file is rewritten, until ctx
// is done. It is a no-op when the token comes from the environment.
func (s *Store) Watch(ctx context.Context) error {
	if s.fromEnv || s.path == "" {
		return nil
	}
	w, err := watcher.New(watcher.DefaultConfig(s.path))
	if err != nil {
		return err
	}
	onChange, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}

	go func() {
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case <-onChange:
				_ = s.Reload()
			}
		}
	}()
	return nil
}
