package cli

import (
	"context"
	"log/slog"
	"testing"

	"github.com/raphaelgruber/chatai/internal/config"
	"github.com/raphaelgruber/chatai/internal/images"
	"github.com/raphaelgruber/chatai/internal/session"
	"github.com/raphaelgruber/chatai/internal/store"
	"github.com/stretchr/testify/require"
)

// useSession installs an in-memory session as the package-wide state for one test.
func useSession(t *testing.T) *session.Session {
	t.Helper()

	v, err := images.NewVault(t.TempDir())
	require.NoError(t, err)

	s, err := session.Load(context.Background(), store.NewMemory(), nil, session.WithImageReleaser(v))
	require.NoError(t, err)

	prevSess, prevVault, prevLogger, prevCfg := sess, vault, logger, cfg
	sess, vault, logger, cfg = s, v, slog.New(slog.DiscardHandler), config.Defaults()
	t.Cleanup(func() {
		sess, vault, logger, cfg = prevSess, prevVault, prevLogger, prevCfg
		_ = v.Close()
	})
	return s
}

// seed appends a question/answer pair per prompt.
func seed(t *testing.T, s *session.Session, prompts ...string) {
	t.Helper()
	ctx := context.Background()
	for _, p := range prompts {
		require.NoError(t, s.AppendQuestion(ctx, p))
		require.NoError(t, s.AppendAnswer(ctx, "answer to "+p))
	}
}
