package session

import (
	"context"
	"slices"
)

// History returns a copy of the search history, most recent first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// RecordPrompt puts text at the front of the search history unless it is already present.
func (s *Session) RecordPrompt(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recordLocked(text) {
		return nil
	}
	return s.persistLocked(ctx)
}

// recordLocked reports whether text was added.
func (s *Session) recordLocked(text string) bool {
	if slices.Contains(s.history, text) {
		return false
	}
	s.history = slices.Insert(s.history, 0, text)
	return true
}

// RemovePrompt deletes the history entry at index. Out-of-range indexes are ignored.
func (s *Session) RemovePrompt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.history) {
		return nil
	}
	s.history = slices.Delete(s.history, index, index+1)
	return s.persistLocked(ctx)
}

// RecallPrompt loads the history entry at index into the draft and returns it.
// An out-of-range index leaves the draft unchanged and returns ok=false.
func (s *Session) RecallPrompt(ctx context.Context, index int) (text string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.history) {
		return "", false, nil
	}
	s.draft = s.history[index]
	return s.draft, true, s.persistLocked(ctx)
}

// Draft returns the text being composed.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the draft. Unchanged text is not written again.
func (s *Session) SetDraft(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == text {
		return nil
	}
	s.draft = text
	return s.persistLocked(ctx)
}
