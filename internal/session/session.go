// Package session holds the state of one conversation: transcript, search
// history and draft. Every mutation is mirrored to a store.Store as a full
// snapshot before the method returns.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/raphaelgruber/chatai/internal/metrics"
	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/raphaelgruber/chatai/internal/store"
)

// Persisted keys.
const (
	KeyTranscript    = "transcript"
	KeySearchHistory = "searchHistory"
	KeyDraft         = "draft"
)

// ErrInvalidFeedback is returned by SetFeedback for values other than positive or negative.
var ErrInvalidFeedback = errors.New("feedback must be positive or negative")

// ImageReleaser frees the resources behind an image reference.
type ImageReleaser interface {
	Release(ref string) error
}

// Session is the in-memory owner of the conversation state.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	store    store.Store
	logger   *slog.Logger
	metrics  *metrics.Collector
	releaser ImageReleaser

	transcript []models.Entry
	history    []string
	draft      string

	persistErr error
}

// Option configures a Session.
type Option func(*Session)

// WithMetrics records store write timings in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// WithImageReleaser releases image references dropped by Clear.
func WithImageReleaser(r ImageReleaser) Option {
	return func(s *Session) { s.releaser = r }
}

// Load restores a session from st. Absent keys start empty; values that
// cannot be decoded are logged and replaced by their defaults.
func Load(ctx context.Context, st store.Store, logger *slog.Logger, opts ...Option) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		store:      st,
		logger:     logger,
		transcript: []models.Entry{},
		history:    []string{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := loadKey(ctx, s, KeyTranscript, &s.transcript); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, s, KeySearchHistory, &s.history); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, s, KeyDraft, &s.draft); err != nil {
		return nil, err
	}
	if s.transcript == nil {
		s.transcript = []models.Entry{}
	}
	if s.history == nil {
		s.history = []string{}
	}

	s.logger.Debug("session loaded",
		"entries", len(s.transcript),
		"history", len(s.history),
		"draft_len", len(s.draft))
	return s, nil
}

// loadKey decodes key into dst. dst is left untouched when the key is absent or malformed.
func loadKey[T any](ctx context.Context, s *Session, key string, dst *T) error {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("discarding unreadable persisted value", "key", key, "error", err)
		return nil
	}
	*dst = v
	return nil
}

// persistLocked writes the full snapshot. Caller must hold s.mu.
func (s *Session) persistLocked(ctx context.Context) error {
	snapshot, err := s.snapshotLocked()
	if err != nil {
		return s.recordPersistError(err)
	}

	err = s.metrics.Time(metrics.OpStoreWrite, func() error {
		return s.store.Write(ctx, snapshot)
	})
	return s.recordPersistError(err)
}

func (s *Session) snapshotLocked() (map[string][]byte, error) {
	transcript, err := json.Marshal(s.transcript)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	history, err := json.Marshal(s.history)
	if err != nil {
		return nil, fmt.Errorf("encode search history: %w", err)
	}
	draft, err := json.Marshal(s.draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return map[string][]byte{
		KeyTranscript:    transcript,
		KeySearchHistory: history,
		KeyDraft:         draft,
	}, nil
}

func (s *Session) recordPersistError(err error) error {
	if err != nil {
		err = fmt.Errorf("persist session: %w", err)
		s.logger.Error("failed to persist session", "error", err)
		s.persistErr = err
	}
	return err
}

// LastPersistError returns the most recent persistence failure, or nil.
func (s *Session) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// Transcript returns a copy of all entries in conversation order.
func (s *Session) Transcript() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// Entry returns the entry at index.
func (s *Session) Entry(index int) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.transcript) {
		return models.Entry{}, false
	}
	return s.transcript[index], true
}

// Len returns the number of transcript entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}
