// Package orchestrator dispatches text and image requests.
//
// Each kind runs its own Idle -> Pending -> Idle cycle. A kind accepts a new
// prompt only while Idle; the two kinds never block each other. The question
// is appended before the upstream call starts and the kind returns to Idle
// only after the result has been applied, so per kind the transcript always
// reads question, then its resolution.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/chatai/internal/imagegen"
	"github.com/raphaelgruber/chatai/internal/llm"
	"github.com/raphaelgruber/chatai/internal/metrics"
	"github.com/raphaelgruber/chatai/internal/upstream"
)

var (
	// ErrEmptyPrompt is returned for prompts that are empty after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrRequestPending is returned when the kind already has a request in flight.
	ErrRequestPending = errors.New("request already pending")

	// ErrUnknownKind is returned for a kind that is neither text nor image.
	ErrUnknownKind = errors.New("unknown request kind")
)

// Session is the part of the conversation state the orchestrator writes to.
type Session interface {
	// AppendPrompt appends the question and clears the draft.
	AppendPrompt(ctx context.Context, text string) error
	AppendAnswer(ctx context.Context, text string) error
	AppendImage(ctx context.Context, ref string) error
}

// ImageStore turns generated bytes into a transcript reference.
type ImageStore interface {
	Put(data []byte, mimeType string) (string, error)
}

// Orchestrator owns the per-kind request state.
type Orchestrator struct {
	mu     sync.Mutex
	states map[Kind]State
	wg     sync.WaitGroup

	session  Session
	text     llm.Generator
	image    imagegen.Generator
	images   ImageStore
	notifier Notifier
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sets where request events are delivered.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithMetrics records upstream call durations in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Orchestrator) { o.metrics = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator with both kinds Idle.
func New(session Session, text llm.Generator, image imagegen.Generator, images ImageStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		states:   map[Kind]State{KindText: Idle, KindImage: Idle},
		session:  session,
		text:     text,
		image:    image,
		images:   images,
		notifier: NotifierFunc(func(Event) {}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state of kind.
func (o *Orchestrator) State(kind Kind) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[kind]
}

// Pending reports whether kind has a request in flight.
func (o *Orchestrator) Pending(kind Kind) bool {
	return o.State(kind) == Pending
}

// Wait blocks until no request of either kind is in flight.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Submit appends the trimmed prompt as a question, clears the draft and starts
// the upstream call for kind in the background. The call is not tied to ctx's
// cancellation: once dispatched, its result is always applied.
func (o *Orchestrator) Submit(ctx context.Context, kind Kind, prompt string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}

	o.mu.Lock()
	if o.states[kind] == Pending {
		o.mu.Unlock()
		return fmt.Errorf("%s: %w", kind, ErrRequestPending)
	}
	o.states[kind] = Pending
	o.wg.Add(1)
	o.mu.Unlock()

	if err := o.session.AppendPrompt(ctx, prompt); err != nil {
		// state is already in memory; persistence failures are reported by the session
		o.logger.Warn("question not persisted", "kind", kind, "error", err)
	}

	o.logger.Info("request dispatched", "kind", kind, "prompt_len", len(prompt))
	o.notifier.Notify(Event{Type: EventDispatched, Kind: kind, Prompt: prompt})

	go o.run(context.WithoutCancel(ctx), kind, prompt)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, kind Kind, prompt string) {
	defer o.wg.Done()

	var err error
	switch kind {
	case KindText:
		err = o.runText(ctx, prompt)
	case KindImage:
		err = o.runImage(ctx, prompt)
	}

	o.mu.Lock()
	o.states[kind] = Idle
	o.mu.Unlock()

	if err != nil {
		msg := FailureMessage(kind, err)
		o.logger.Error("request failed", "kind", kind, "error", err)
		o.notifier.Notify(Event{Type: EventFailed, Kind: kind, Prompt: prompt, Message: msg, Err: err})
		return
	}
	o.logger.Info("request completed", "kind", kind)
	o.notifier.Notify(Event{Type: EventCompleted, Kind: kind, Prompt: prompt})
}

func (o *Orchestrator) runText(ctx context.Context, prompt string) error {
	if o.text == nil {
		return errors.New("no text provider configured")
	}

	start := time.Now()
	answer, err := o.text.Generate(ctx, prompt)
	o.metrics.RecordTiming(metrics.OpTextGenerate, time.Since(start), err)
	if err != nil {
		return err
	}

	if err := o.session.AppendAnswer(ctx, answer); err != nil {
		o.logger.Warn("answer not persisted", "error", err)
	}
	return nil
}

func (o *Orchestrator) runImage(ctx context.Context, prompt string) error {
	if o.image == nil {
		return errors.New("no image provider configured")
	}

	start := time.Now()
	img, err := o.image.Generate(ctx, prompt)
	o.metrics.RecordTiming(metrics.OpImageGenerate, time.Since(start), err)
	if err != nil {
		return err
	}

	ref, err := o.images.Put(img.Data, img.MIMEType)
	if err != nil {
		return err
	}
	if err := o.session.AppendImage(ctx, ref); err != nil {
		o.logger.Warn("image entry not persisted", "error", err)
	}
	return nil
}

// FailureMessage is the single user-facing line for a failed request.
func FailureMessage(kind Kind, err error) string {
	msg := fmt.Sprintf("%s generation failed: %s", kind.Title(), upstream.Detail(err))
	if upstream.IsAuthError(err) {
		msg += " (check your API key)"
	}
	return msg
}
