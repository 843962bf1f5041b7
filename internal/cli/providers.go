package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/raphaelgruber/chatai/internal/imagegen"
	"github.com/raphaelgruber/chatai/internal/llm"
	"github.com/raphaelgruber/chatai/internal/orchestrator"
)

// unavailableText stands in for a text provider that could not be created,
// so the failure surfaces as a normal request failure instead of blocking startup.
type unavailableText struct {
	provider string
	err      error
}

func (u unavailableText) Generate(context.Context, string) (string, error) { return "", u.err }
func (u unavailableText) Name() string                                     { return u.provider }

type unavailableImage struct {
	provider string
	err      error
}

func (u unavailableImage) Generate(context.Context, string) (imagegen.Image, error) {
	return imagegen.Image{}, u.err
}
func (u unavailableImage) Name() string { return u.provider }

// newOrchestrator builds the configured providers around the global session.
func newOrchestrator(ctx context.Context, n orchestrator.Notifier) *orchestrator.Orchestrator {
	text, err := llm.New(ctx, cfg, nil)
	if err != nil {
		logger.Warn("text provider unavailable", "provider", cfg.TextProvider, "error", err)
		text = unavailableText{provider: cfg.TextProvider, err: err}
	}

	image, err := imagegen.New(ctx, cfg, nil)
	if err != nil {
		logger.Warn("image provider unavailable", "provider", cfg.ImageProvider, "error", err)
		image = unavailableImage{provider: cfg.ImageProvider, err: err}
	}

	return orchestrator.New(sess, text, image, vault,
		orchestrator.WithNotifier(n),
		orchestrator.WithMetrics(collector),
		orchestrator.WithLogger(logger),
	)
}

// reporter prints request failures for one-shot commands and remembers them.
type reporter struct {
	mu     sync.Mutex
	w      io.Writer
	failed bool
}

func (r *reporter) Notify(e orchestrator.Event) {
	if e.Type != orchestrator.EventFailed {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	fmt.Fprintln(r.w, e.Message)
}

func (r *reporter) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}
