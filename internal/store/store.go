// Package store provides the durable key/value space behind a chat session.
//
// A store holds a handful of small JSON values under fixed keys. Every write
// is a full snapshot: all given keys are replaced together, in one transaction
// where the backend supports it.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is a key/value space with whole-snapshot writes.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Write replaces every key in snapshot in a single operation.
	Write(ctx context.Context, snapshot map[string][]byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBolt    = "bolt"
	BackendSQLite  = "sqlite"
	BackendSurreal = "surreal"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the database file for bolt and sqlite.
	Path string

	RedisURL    string
	RedisPrefix string

	Surreal SurrealConfig
}

// Open connects to the backend named in opts.
func Open(ctx context.Context, opts Options, log *slog.Logger) (Store, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("store", opts.Backend)

	switch opts.Backend {
	case BackendBolt, "":
		if err := ensureDir(opts.Path); err != nil {
			return nil, err
		}
		return OpenBolt(opts.Path)
	case BackendSQLite:
		if err := ensureDir(opts.Path); err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, opts.Path)
	case BackendSurreal:
		return OpenSurreal(ctx, opts.Surreal, log)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func ensureDir(path string) error {
	if path == "" {
		return fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	return nil
}
