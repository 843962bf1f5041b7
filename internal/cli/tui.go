package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/chatai/internal/export"
	"github.com/raphaelgruber/chatai/internal/images"
	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/raphaelgruber/chatai/internal/orchestrator"
	"github.com/raphaelgruber/chatai/internal/session"
	"github.com/raphaelgruber/chatai/internal/view"
)

// historyRows is how many recent prompts the history pane shows.
const historyRows = 5

// pane is the part of the screen that receives keys.
type pane int

const (
	paneCompose pane = iota
	paneTranscript
	paneHistory
	paneConfirmClear
)

// requester is the part of the orchestrator the chat screen drives.
type requester interface {
	Submit(ctx context.Context, kind orchestrator.Kind, prompt string) error
	Pending(kind orchestrator.Kind) bool
}

// requestEventMsg carries an orchestrator event into the program.
type requestEventMsg orchestrator.Event

// programNotifier forwards completion events into a running program.
// Dispatch events are skipped: they are emitted from inside Update, where
// sending to the program would block.
type programNotifier struct {
	p atomic.Pointer[tea.Program]
}

func (n *programNotifier) Notify(e orchestrator.Event) {
	if e.Type == orchestrator.EventDispatched {
		return
	}
	if p := n.p.Load(); p != nil {
		p.Send(requestEventMsg(e))
	}
}

// chatModel is the bubbletea model for the chat screen.
type chatModel struct {
	ctx      context.Context
	session  *session.Session
	orch     requester
	vault    *images.Vault
	exporter export.Sink
	logger   *slog.Logger

	input    textarea.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	theme    Theme
	renderer *glamour.TermRenderer

	pane          pane
	favoritesOnly bool
	visible       []int // transcript indexes currently listed
	cursor        int   // position in visible
	historyCursor int

	status string
	alert  string

	width  int
	height int
}

// newChatModel creates the chat screen around an open session.
func newChatModel(ctx context.Context, s *session.Session, orch requester, v *images.Vault, exporter export.Sink, theme Theme, logger *slog.Logger) chatModel {
	if logger == nil {
		logger = slog.Default()
	}

	input := textarea.New()
	input.Placeholder = "Ask something, or describe an image..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.SetValue(s.Draft())
	input.Focus()

	m := chatModel{
		ctx:      ctx,
		session:  s,
		orch:     orch,
		vault:    v,
		exporter: exporter,
		logger:   logger,
		input:    input,
		viewport: viewport.New(viewport.WithWidth(80), viewport.WithHeight(12)),
		help:     help.New(),
		keys:     defaultKeyMap,
		theme:    theme,
		width:    80,
		height:   24,
	}
	m.layout()
	m.refresh()
	m.updateKeyBindings()
	return m
}

// Init returns the initial command.
func (m chatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.updateKeyBindings()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case requestEventMsg:
		if msg.Type == orchestrator.EventFailed {
			m.alert = msg.Message
		}
		m.refresh()
		m.updateKeyBindings()
		return m, nil

	case tea.KeyPressMsg:
		next, cmd := m.handleKey(msg)
		next.updateKeyBindings()
		return next, cmd
	}

	var cmd tea.Cmd
	if m.pane == paneCompose {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyPressMsg) (chatModel, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.pane == paneConfirmClear {
		return m.resolveClear(key.Matches(msg, m.keys.Confirm)), nil
	}

	switch {
	case key.Matches(msg, m.keys.SubmitText):
		return m.submit(orchestrator.KindText), nil
	case key.Matches(msg, m.keys.SubmitImage):
		return m.submit(orchestrator.KindImage), nil
	case key.Matches(msg, m.keys.Favorites):
		m.favoritesOnly = !m.favoritesOnly
		m.cursor = -1
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		m.theme = m.theme.toggled()
		m.renderer = nil
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.pane = paneConfirmClear
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		return m.export(), nil
	case key.Matches(msg, m.keys.NextPane):
		return m.focus((m.pane + 1) % paneConfirmClear), nil
	case key.Matches(msg, m.keys.Compose):
		return m.focus(paneCompose), nil
	}

	switch m.pane {
	case paneTranscript:
		return m.handleTranscriptKey(msg), nil
	case paneHistory:
		return m.handleHistoryKey(msg), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.saveDraft()
	return m, cmd
}

func (m chatModel) handleTranscriptKey(msg tea.KeyPressMsg) chatModel {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Favorite):
		if i, ok := m.selected(); ok {
			m.report(m.session.ToggleFavorite(m.ctx, i))
		}
	case key.Matches(msg, m.keys.ThumbsUp):
		if i, ok := m.selected(); ok {
			m.report(m.session.SetFeedback(m.ctx, i, models.FeedbackPositive))
		}
	case key.Matches(msg, m.keys.ThumbsDn):
		if i, ok := m.selected(); ok {
			m.report(m.session.SetFeedback(m.ctx, i, models.FeedbackNegative))
		}
	default:
		m.viewport, _ = m.viewport.Update(msg)
		return m
	}
	m.refresh()
	return m
}

func (m chatModel) handleHistoryKey(msg tea.KeyPressMsg) chatModel {
	n := len(m.session.History())
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.historyCursor < n-1 {
			m.historyCursor++
		}
	case key.Matches(msg, m.keys.Recall):
		text, ok, err := m.session.RecallPrompt(m.ctx, m.historyCursor)
		m.report(err)
		if ok {
			m.input.SetValue(text)
			return m.focus(paneCompose)
		}
	case key.Matches(msg, m.keys.Remove):
		m.report(m.session.RemovePrompt(m.ctx, m.historyCursor))
		if m.historyCursor >= n-1 && m.historyCursor > 0 {
			m.historyCursor--
		}
	}
	return m
}

// submit sends the input as a request of kind. Empty input is ignored.
func (m chatModel) submit(kind orchestrator.Kind) chatModel {
	err := m.orch.Submit(m.ctx, kind, m.input.Value())
	switch {
	case errors.Is(err, orchestrator.ErrEmptyPrompt):
		return m
	case err != nil:
		m.alert = err.Error()
		return m
	}
	m.input.Reset()
	m.alert = ""
	m.status = ""
	m.cursor = -1
	m.refresh()
	return m
}

func (m chatModel) resolveClear(confirmed bool) chatModel {
	m.pane = paneCompose
	m.input.Focus()
	if !confirmed {
		m.status = "Cancelled."
		return m
	}
	if err := m.session.Clear(m.ctx); err != nil {
		m.report(err)
	} else {
		m.status = "✓ Chat history cleared"
	}
	m.cursor = -1
	m.refresh()
	return m
}

func (m chatModel) export() chatModel {
	location, err := m.exporter.Export(m.ctx, view.ExportFileName, view.ExportText(m.session.Transcript()))
	if err != nil {
		m.alert = fmt.Sprintf("Export failed: %v", err)
		return m
	}
	m.logger.Info("transcript exported", "location", location)
	m.status = "✓ Exported to " + location
	return m
}

func (m chatModel) focus(p pane) chatModel {
	m.pane = p
	if p == paneCompose {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.refresh()
	return m
}

// saveDraft persists the input when it differs from the stored draft.
func (m *chatModel) saveDraft() {
	if v := m.input.Value(); v != m.session.Draft() {
		m.report(m.session.SetDraft(m.ctx, v))
	}
}

// report shows a failed session write. The session keeps the change in memory.
func (m *chatModel) report(err error) {
	if err != nil {
		m.logger.Warn("session write failed", "error", err)
		m.alert = "Could not save: " + err.Error()
	}
}

// selected returns the transcript index under the cursor.
func (m chatModel) selected() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

// layout sizes the widgets for the current window.
func (m *chatModel) layout() {
	inner := max(m.width-2, 20)
	m.input.SetWidth(inner)

	// title, history pane, status lines, input pane, help
	reserved := 1 + (historyRows + 3) + 2 + (m.input.Height() + 2) + 1
	m.viewport.SetWidth(inner)
	m.viewport.SetHeight(max(m.height-reserved-2, 3))
	m.renderer = nil
}

// refresh recomputes the listed entries and re-renders the transcript.
func (m *chatModel) refresh() {
	transcript := m.session.Transcript()

	m.visible = m.visible[:0]
	for i := range view.VisibleEntries(transcript, m.favoritesOnly) {
		m.visible = append(m.visible, i)
	}
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if n := len(m.session.History()); m.historyCursor >= n {
		m.historyCursor = max(n-1, 0)
	}

	m.viewport.SetContent(m.renderTranscript(transcript))
	if m.pane != paneTranscript {
		m.viewport.GotoBottom()
	}
}

func (m *chatModel) renderTranscript(transcript []models.Entry) string {
	if len(m.visible) == 0 {
		if m.favoritesOnly {
			return m.theme.hintStyle().Render(emptyFavorites)
		}
		return m.theme.hintStyle().Render(emptyTranscript)
	}

	blocks := make([]string, 0, len(m.visible))
	for pos, i := range m.visible {
		block := m.renderEntry(transcript[i])
		marker := "  "
		if m.pane == paneTranscript && pos == m.cursor {
			marker = m.theme.selectedStyle().Render("▌ ")
		}
		blocks = append(blocks, indent(block, marker))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *chatModel) renderEntry(e models.Entry) string {
	switch e.Kind {
	case models.KindQuestion:
		return m.theme.questionStyle().Render(view.PrefixQuestion + " " + e.Content)
	case models.KindAnswer:
		header := view.PrefixAnswer
		if e.Favorite {
			header += " ★"
		}
		if sym := e.Feedback.Symbol(); sym != "" {
			header += " " + sym
		}
		return m.theme.answerStyle().Render(header) + "\n" + m.markdown(e.Content)
	case models.KindImage:
		if m.vault == nil || !m.vault.Resolves(e.Content) {
			return m.theme.hintStyle().Render(view.PrefixImage + " " + imageMissing)
		}
		return view.PrefixImage + " " + e.Content
	default:
		return e.Content
	}
}

// markdown renders an answer with the glamour style matching the theme.
// Falls back to the plain text if rendering fails.
func (m *chatModel) markdown(text string) string {
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.theme.Name),
			glamour.WithWordWrap(max(m.width-8, 20)),
		)
		if err != nil {
			m.logger.Debug("markdown renderer unavailable", "error", err)
			return m.theme.answerStyle().Render(text)
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return m.theme.answerStyle().Render(text)
	}
	return strings.Trim(out, "\n")
}

// View renders the chat screen.
func (m chatModel) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	return v
}

func (m chatModel) renderContent() string {
	var b strings.Builder

	title := m.theme.titleStyle().Render("chatai")
	if m.favoritesOnly {
		title += " " + m.theme.hintStyle().Render("★ favorites only")
	}
	b.WriteString(title + "\n")

	b.WriteString(m.theme.paneStyle(m.pane == paneTranscript).Render(m.viewport.View()) + "\n")
	b.WriteString(m.theme.paneStyle(m.pane == paneHistory).Width(max(m.width-2, 20)).Render(m.renderHistory()) + "\n")
	b.WriteString(m.renderStatus() + "\n")
	b.WriteString(m.theme.paneStyle(m.pane == paneCompose).Render(m.input.View()) + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m chatModel) renderHistory() string {
	history := m.session.History()
	title := m.theme.hintStyle().Render("Recent searches")
	if len(history) == 0 {
		return title + "\n" + m.theme.hintStyle().Render(emptyHistory)
	}

	// keep the cursor inside the shown window
	start := 0
	if m.historyCursor >= historyRows {
		start = m.historyCursor - historyRows + 1
	}
	end := min(start+historyRows, len(history))

	lines := []string{title}
	for i := start; i < end; i++ {
		line := "  " + history[i]
		if m.pane == paneHistory && i == m.historyCursor {
			line = m.theme.selectedStyle().Render("▌ " + history[i])
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m chatModel) renderStatus() string {
	var lines []string
	if m.orch.Pending(orchestrator.KindText) {
		lines = append(lines, m.theme.pendingStyle().Render("Generating answer..."))
	}
	if m.orch.Pending(orchestrator.KindImage) {
		lines = append(lines, m.theme.pendingStyle().Render("Generating image..."))
	}
	switch {
	case m.pane == paneConfirmClear:
		lines = append(lines, m.theme.errorStyle().Render("Clear chat history? (y/N)"))
	case m.alert != "":
		lines = append(lines, m.theme.errorStyle().Render("✗ "+m.alert))
	case m.status != "":
		lines = append(lines, m.theme.successStyle().Render(m.status))
	}
	return strings.Join(lines, "\n")
}

// indent prefixes the first line with marker and the rest with matching spaces.
func indent(block, marker string) string {
	pad := strings.Repeat(" ", lipgloss.Width(marker))
	lines := strings.Split(block, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = marker + lines[i]
		} else {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// runTUI opens the chat screen and blocks until the user quits.
func runTUI(ctx context.Context) error {
	notifier := &programNotifier{}
	orch := newOrchestrator(ctx, notifier)

	model := newChatModel(ctx, sess, orch, vault, export.FileSink{Dir: cfg.ExportDir}, themeNamed(cfg.Theme), logger)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	notifier.p.Store(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	if orch.Pending(orchestrator.KindText) || orch.Pending(orchestrator.KindImage) {
		logger.Info("quit with requests in flight")
	}
	return nil
}
