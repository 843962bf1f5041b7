package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/chatai/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		_, err := s.Get(ctx, "transcript")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		require.NoError(t, s.Write(ctx, map[string][]byte{
			"transcript":    []byte(`[{"kind":"question","content":"hi"}]`),
			"searchHistory": []byte(`["hi"]`),
			"draft":         []byte(`""`),
		}))

		got, err := s.Get(ctx, "transcript")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"kind":"question","content":"hi"}]`, string(got))

		got, err = s.Get(ctx, "searchHistory")
		require.NoError(t, err)
		assert.JSONEq(t, `["hi"]`, string(got))

		got, err = s.Get(ctx, "draft")
		require.NoError(t, err)
		assert.Equal(t, `""`, string(got))
	})

	t.Run("later snapshot replaces values", func(t *testing.T) {
		require.NoError(t, s.Write(ctx, map[string][]byte{
			"transcript":    []byte(`[]`),
			"searchHistory": []byte(`["again","hi"]`),
			"draft":         []byte(`"typing"`),
		}))

		got, err := s.Get(ctx, "transcript")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))

		got, err = s.Get(ctx, "draft")
		require.NoError(t, err)
		assert.Equal(t, `"typing"`, string(got))
	})
}

func TestMemory(t *testing.T) {
	m := store.NewMemory()
	exerciseStore(t, m)
	assert.Equal(t, 2, m.Writes())
	assert.Equal(t, []string{"draft", "searchHistory", "transcript"}, m.Keys())
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	value := []byte(`"abc"`)
	require.NoError(t, m.Write(ctx, map[string][]byte{"draft": value}))
	value[1] = 'X'

	got, err := m.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatai.db")
	s, err := store.OpenBolt(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	// values survive a reopen
	s, err = store.OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, `"typing"`, string(got))
}

func TestSQLite(t *testing.T) {
	s, err := store.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteFileReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chatai.sqlite")

	s, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, map[string][]byte{"searchHistory": []byte(`["a"]`)}))
	require.NoError(t, s.Close())

	s, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "searchHistory")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    store.Options
		wantErr error
	}{
		{"memory", store.Options{Backend: store.BackendMemory}, nil},
		{"bolt default", store.Options{Path: filepath.Join(dir, "nested", "chatai.db")}, nil},
		{"sqlite", store.Options{Backend: store.BackendSQLite, Path: filepath.Join(dir, "chatai.sqlite")}, nil},
		{"unknown", store.Options{Backend: "etcd"}, store.ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.Open(ctx, tt.opts, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			_, err = s.Get(ctx, "draft")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestOpenFileBackendNeedsPath(t *testing.T) {
	_, err := store.Open(context.Background(), store.Options{Backend: store.BackendBolt}, nil)
	assert.Error(t, err)
}
