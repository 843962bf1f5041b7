package cli

import (
	"charm.land/bubbles/v2/key"
	"github.com/raphaelgruber/chatai/internal/orchestrator"
)

// keyMap holds the chat screen bindings. Global bindings work in every pane;
// the rest only apply to the focused pane.
type keyMap struct {
	// Global
	SubmitText  key.Binding
	SubmitImage key.Binding
	Favorites   key.Binding
	Theme       key.Binding
	Clear       key.Binding
	Export      key.Binding
	NextPane    key.Binding
	Compose     key.Binding
	Quit        key.Binding

	// Transcript and history panes
	Up   key.Binding
	Down key.Binding

	// Transcript pane
	Favorite key.Binding
	ThumbsUp key.Binding
	ThumbsDn key.Binding

	// History pane
	Recall key.Binding
	Remove key.Binding

	// Clear confirmation
	Confirm key.Binding
}

var defaultKeyMap = keyMap{
	SubmitText:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "ask")),
	SubmitImage: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "image")),
	Favorites:   key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "favorites")),
	Theme:       key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
	Clear:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear")),
	Export:      key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export")),
	NextPane:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	Compose:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to input")),
	Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),

	Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
	ThumbsUp: key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "good")),
	ThumbsDn: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "bad")),

	Recall: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use prompt")),
	Remove: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),

	Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
}

// updateKeyBindings enables the bindings that apply to the current pane and
// disables submitting for a kind that already has a request in flight.
func (m *chatModel) updateKeyBindings() {
	k := &m.keys
	confirming := m.pane == paneConfirmClear

	k.SubmitText.SetEnabled(!confirming && !m.orch.Pending(orchestrator.KindText))
	k.SubmitImage.SetEnabled(!confirming && !m.orch.Pending(orchestrator.KindImage))
	for _, b := range []*key.Binding{&k.Favorites, &k.Theme, &k.Clear, &k.Export, &k.NextPane} {
		b.SetEnabled(!confirming)
	}
	k.Compose.SetEnabled(m.pane != paneCompose)

	browsing := m.pane == paneTranscript || m.pane == paneHistory
	k.Up.SetEnabled(browsing)
	k.Down.SetEnabled(browsing)

	k.Favorite.SetEnabled(m.pane == paneTranscript)
	k.ThumbsUp.SetEnabled(m.pane == paneTranscript)
	k.ThumbsDn.SetEnabled(m.pane == paneTranscript)

	k.Recall.SetEnabled(m.pane == paneHistory)
	k.Remove.SetEnabled(m.pane == paneHistory)

	k.Confirm.SetEnabled(confirming)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.SubmitText, k.SubmitImage, k.NextPane, k.Compose,
		k.Favorite, k.ThumbsUp, k.ThumbsDn, k.Recall, k.Remove,
		k.Confirm, k.Quit,
	}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SubmitText, k.SubmitImage, k.Quit},
		{k.Favorites, k.Theme, k.Clear, k.Export},
		{k.NextPane, k.Compose, k.Up, k.Down},
		{k.Favorite, k.ThumbsUp, k.ThumbsDn, k.Recall, k.Remove},
	}
}
