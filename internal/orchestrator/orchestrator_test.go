package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/raphaelgruber/chatai/internal/imagegen"
	"github.com/raphaelgruber/chatai/internal/images"
	"github.com/raphaelgruber/chatai/internal/llm"
	"github.com/raphaelgruber/chatai/internal/metrics"
	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/raphaelgruber/chatai/internal/orchestrator"
	"github.com/raphaelgruber/chatai/internal/session"
	"github.com/raphaelgruber/chatai/internal/store"
	"github.com/raphaelgruber/chatai/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeText answers with text/err; when gate is set it blocks until the gate is closed.
type fakeText struct {
	gate  chan struct{}
	text  string
	err   error
	calls []string
	mu    sync.Mutex
}

func (f *fakeText) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.text, f.err
}

func (f *fakeText) Name() string { return "fake/text" }

type fakeImage struct {
	gate chan struct{}
	img  imagegen.Image
	err  error
}

func (f *fakeImage) Generate(context.Context, string) (imagegen.Image, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.img, f.err
}

func (f *fakeImage) Name() string { return "fake/image" }

type recorder struct {
	mu     sync.Mutex
	events []orchestrator.Event
}

func (r *recorder) Notify(e orchestrator.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t orchestrator.EventType) []orchestrator.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orchestrator.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	session *session.Session
	store   *store.Memory
	vault   *images.Vault
	events  *recorder
	metrics *metrics.Collector
	orch    *orchestrator.Orchestrator
}

func newFixture(t *testing.T, text llm.Generator, image imagegen.Generator) *fixture {
	t.Helper()
	st := store.NewMemory()
	sess, err := session.Load(context.Background(), st, nil)
	require.NoError(t, err)
	vault, err := images.NewVault(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = vault.Close() })

	f := &fixture{session: sess, store: st, vault: vault, events: &recorder{}, metrics: metrics.NewCollector()}
	f.orch = orchestrator.New(sess, text, image, vault,
		orchestrator.WithNotifier(f.events),
		orchestrator.WithMetrics(f.metrics))
	return f
}

func TestSubmitTextNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()
	f := newFixture(t, llm.NewGemini("k", "gemini-2.0-flash", srv.URL, srv.Client()), &fakeImage{})

	require.NoError(t, f.orch.Submit(context.Background(), orchestrator.KindText, "hello"))
	f.orch.Wait()

	assert.Equal(t, []models.Entry{
		models.Question("hello"),
		{Kind: models.KindAnswer, Content: "No response.", Favorite: false, Feedback: models.FeedbackNone},
	}, f.session.Transcript())
	assert.Equal(t, orchestrator.Idle, f.orch.State(orchestrator.KindText))
	assert.Len(t, f.events.ofType(orchestrator.EventCompleted), 1)
}

func TestSubmitTextNetworkFailure(t *testing.T) {
	netErr := upstream.Wrap("gemini", errors.New("dial tcp: connection refused"))
	f := newFixture(t, &fakeText{err: netErr}, &fakeImage{})

	require.NoError(t, f.orch.Submit(context.Background(), orchestrator.KindText, "hi"))
	f.orch.Wait()

	assert.Equal(t, []models.Entry{models.Question("hi")}, f.session.Transcript())
	assert.Equal(t, orchestrator.Idle, f.orch.State(orchestrator.KindText))

	failed := f.events.ofType(orchestrator.EventFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "Text generation failed: dial tcp: connection refused", failed[0].Message)
	assert.ErrorIs(t, failed[0].Err, netErr)
	assert.Empty(t, f.events.ofType(orchestrator.EventCompleted))
}

func TestFailureMessagePrefersStatus(t *testing.T) {
	f := newFixture(t, &fakeText{}, &fakeImage{err: upstream.StatusError("stability", 402, []byte("no credits"))})

	require.NoError(t, f.orch.Submit(context.Background(), orchestrator.KindImage, "a cat"))
	f.orch.Wait()

	failed := f.events.ofType(orchestrator.EventFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "Image generation failed: status 402", failed[0].Message)
	assert.Equal(t, []models.Entry{models.Question("a cat")}, f.session.Transcript())
}

func TestFailureMessageAuthHint(t *testing.T) {
	msg := orchestrator.FailureMessage(orchestrator.KindText, upstream.StatusError("gemini", 401, nil))
	assert.Equal(t, "Text generation failed: status 401 (check your API key)", msg)
}

func TestSubmitWhilePendingIsRejected(t *testing.T) {
	text := &fakeText{gate: make(chan struct{}), text: "done"}
	f := newFixture(t, text, &fakeImage{})
	ctx := context.Background()

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "first"))
	assert.True(t, f.orch.Pending(orchestrator.KindText))

	err := f.orch.Submit(ctx, orchestrator.KindText, "second")
	assert.ErrorIs(t, err, orchestrator.ErrRequestPending)
	assert.Equal(t, []models.Entry{models.Question("first")}, f.session.Transcript(), "rejected submit does not mutate")

	close(text.gate)
	f.orch.Wait()
	assert.False(t, f.orch.Pending(orchestrator.KindText))
	assert.Equal(t, []string{"first"}, text.calls)

	// idle again: the next submission goes through
	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "third"))
	f.orch.Wait()
	assert.Equal(t, []models.Entry{
		models.Question("first"), models.Answer("done"),
		models.Question("third"), models.Answer("done"),
	}, f.session.Transcript())
}

func TestKindsAreIndependent(t *testing.T) {
	text := &fakeText{gate: make(chan struct{}), text: "words"}
	image := &fakeImage{img: imagegen.Image{Data: []byte("WEBP"), MIMEType: "image/webp"}}
	f := newFixture(t, text, image)
	ctx := context.Background()

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "describe a fox"))
	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindImage, "draw a fox"))

	// image resolves while text is still pending
	require.Eventually(t, func() bool { return !f.orch.Pending(orchestrator.KindImage) }, waitFor, tick)
	assert.True(t, f.orch.Pending(orchestrator.KindText))

	close(text.gate)
	f.orch.Wait()

	tr := f.session.Transcript()
	require.Len(t, tr, 4)
	assert.Equal(t, models.Question("describe a fox"), tr[0])
	assert.Equal(t, models.Question("draw a fox"), tr[1])
	assert.Equal(t, models.KindImage, tr[2].Kind)
	assert.True(t, f.vault.Resolves(tr[2].Content))
	assert.Equal(t, models.Answer("words"), tr[3])
}

func TestEmptyPromptRejected(t *testing.T) {
	f := newFixture(t, &fakeText{}, &fakeImage{})
	ctx := context.Background()
	require.NoError(t, f.session.SetDraft(ctx, "   "))
	writes := f.store.Writes()

	for _, p := range []string{"", "   ", "\n\t"} {
		assert.ErrorIs(t, f.orch.Submit(ctx, orchestrator.KindText, p), orchestrator.ErrEmptyPrompt)
		assert.ErrorIs(t, f.orch.Submit(ctx, orchestrator.KindImage, p), orchestrator.ErrEmptyPrompt)
	}

	assert.Empty(t, f.session.Transcript())
	assert.Equal(t, "   ", f.session.Draft())
	assert.Equal(t, writes, f.store.Writes())
	assert.Empty(t, f.events.events)
	assert.False(t, f.orch.Pending(orchestrator.KindText))
}

func TestUnknownKindRejected(t *testing.T) {
	f := newFixture(t, &fakeText{}, &fakeImage{})
	ctx := context.Background()
	require.NoError(t, f.session.SetDraft(ctx, "draft"))
	writes := f.store.Writes()
	unknown := orchestrator.Kind(7)

	assert.ErrorIs(t, f.orch.Submit(ctx, unknown, "hello"), orchestrator.ErrUnknownKind)
	f.orch.Wait()

	assert.False(t, f.orch.Pending(unknown))
	assert.Empty(t, f.session.Transcript())
	assert.Empty(t, f.session.History())
	assert.Equal(t, "draft", f.session.Draft())
	assert.Equal(t, writes, f.store.Writes())
	assert.Empty(t, f.events.events)
}

func TestSubmitTrimsAndClearsDraft(t *testing.T) {
	text := &fakeText{gate: make(chan struct{}), text: "ok"}
	f := newFixture(t, text, &fakeImage{})
	ctx := context.Background()
	require.NoError(t, f.session.SetDraft(ctx, "  what is go?  "))

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, f.session.Draft()))

	// question and draft are applied before the call resolves
	assert.Equal(t, []models.Entry{models.Question("what is go?")}, f.session.Transcript())
	assert.Equal(t, "", f.session.Draft())
	assert.Equal(t, []string{"what is go?"}, f.session.History())

	dispatched := f.events.ofType(orchestrator.EventDispatched)
	require.Len(t, dispatched, 1)
	assert.Equal(t, "what is go?", dispatched[0].Prompt)
	assert.Equal(t, orchestrator.KindText, dispatched[0].Kind)

	close(text.gate)
	f.orch.Wait()
	assert.Equal(t, []string{"what is go?"}, text.calls)
}

func TestResultAppliedAfterCallerContextCancelled(t *testing.T) {
	text := &fakeText{gate: make(chan struct{}), text: "late"}
	f := newFixture(t, text, &fakeImage{})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "q"))
	cancel()
	close(text.gate)
	f.orch.Wait()

	assert.Equal(t, []models.Entry{models.Question("q"), models.Answer("late")}, f.session.Transcript())
}

func TestAnswerAppliedAfterClear(t *testing.T) {
	text := &fakeText{gate: make(chan struct{}), text: "still here"}
	f := newFixture(t, text, &fakeImage{})
	ctx := context.Background()

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "q"))
	require.NoError(t, f.session.Clear(ctx))
	close(text.gate)
	f.orch.Wait()

	assert.Equal(t, []models.Entry{models.Answer("still here")}, f.session.Transcript())
}

func TestMissingProviderFails(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "q"))
	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindImage, "p"))
	f.orch.Wait()

	assert.Len(t, f.events.ofType(orchestrator.EventFailed), 2)
	assert.False(t, f.orch.Pending(orchestrator.KindText))
	assert.False(t, f.orch.Pending(orchestrator.KindImage))
}

func TestUpstreamCallsAreTimed(t *testing.T) {
	f := newFixture(t, &fakeText{text: "a"}, &fakeImage{err: errors.New("boom")})
	ctx := context.Background()

	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindText, "q"))
	require.NoError(t, f.orch.Submit(ctx, orchestrator.KindImage, "p"))
	f.orch.Wait()

	snap := f.metrics.Snapshot()
	require.NotNil(t, snap.TextGenerate)
	require.NotNil(t, snap.ImageGenerate)
	assert.Equal(t, int64(1), snap.TextGenerate.Count)
	assert.Equal(t, int64(1), snap.ImageGenerate.Failures)
}

func TestKindAndStateStrings(t *testing.T) {
	assert.Equal(t, "text", orchestrator.KindText.String())
	assert.Equal(t, "Image", orchestrator.KindImage.Title())
	assert.True(t, orchestrator.KindImage.Valid())
	assert.False(t, orchestrator.Kind(-1).Valid())
	assert.Equal(t, "pending", orchestrator.Pending.String())
	assert.Equal(t, "failed", orchestrator.EventFailed.String())
}
