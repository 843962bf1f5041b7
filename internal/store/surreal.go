package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections to prevent HTTP/2 ALPN negotiation.
	// WebSocket upgrade requires HTTP/1.1 semantics which fail under HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// Surreal keeps the session as kv records in SurrealDB.
type Surreal struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger logger.Logger
}

type kvRecord struct {
	Value string `json:"value"`
}

// OpenSurreal connects with an auto-reconnecting WebSocket, signs in and selects the database.
func OpenSurreal(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*Surreal, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())

	codec := surrealcbor.New()

	// gorillaws appends /rpc itself
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	log.Debug("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	auth := surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}
	if cfg.AuthLevel == "database" {
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	log.Debug("SurrealDB connection established", "namespace", cfg.Namespace, "database", cfg.Database)
	return &Surreal{conn: conn, db: db, logger: sdkLogger}, nil
}

func (s *Surreal) Get(ctx context.Context, key string) ([]byte, error) {
	results, err := surrealdb.Query[[]kvRecord](ctx, s.db, `
		SELECT value FROM type::record("kv", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return []byte((*results)[0].Result[0].Value), nil
}

func (s *Surreal) Write(ctx context.Context, snapshot map[string][]byte) error {
	var sql strings.Builder
	vars := make(map[string]any, 2*len(snapshot))

	sql.WriteString("BEGIN TRANSACTION;\n")
	for i, k := range slices.Sorted(maps.Keys(snapshot)) {
		fmt.Fprintf(&sql, "UPSERT type::record(\"kv\", $k%d) SET value = $v%d;\n", i, i)
		vars[fmt.Sprintf("k%d", i)] = k
		vars[fmt.Sprintf("v%d", i)] = string(snapshot[k])
	}
	sql.WriteString("COMMIT TRANSACTION;")

	if _, err := surrealdb.Query[any](ctx, s.db, sql.String(), vars); err != nil {
		return fmt.Errorf("write snapshot: %w", wrapQueryError(err))
	}
	return nil
}

// Wipe deletes every kv record. Use for testing only.
func (s *Surreal) Wipe(ctx context.Context) error {
	s.logger.Warn("wiping kv table")
	if _, err := surrealdb.Query[any](ctx, s.db, "DELETE kv", nil); err != nil {
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}

func (s *Surreal) Close() error {
	return s.conn.Close(context.Background())
}
