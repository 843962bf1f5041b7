package session

import (
	"context"

	"github.com/raphaelgruber/chatai/internal/models"
)

// AppendQuestion appends a question and records it in the search history.
func (s *Session) AppendQuestion(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.Question(text))
	s.recordLocked(text)
	return s.persistLocked(ctx)
}

// AppendPrompt appends a question, records it in the search history and
// clears the draft, all in one write. Used when a request is dispatched.
func (s *Session) AppendPrompt(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.Question(text))
	s.recordLocked(text)
	s.draft = ""
	return s.persistLocked(ctx)
}

// AppendAnswer appends an answer with no favorite mark and no feedback.
func (s *Session) AppendAnswer(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.Answer(text))
	return s.persistLocked(ctx)
}

// AppendImage appends an image entry for ref.
func (s *Session) AppendImage(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.Image(ref))
	return s.persistLocked(ctx)
}

// ToggleFavorite flips the favorite mark of the answer at index.
// Out-of-range indexes and non-answers are ignored.
func (s *Session) ToggleFavorite(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAnswerLocked(index) {
		return nil
	}
	s.transcript[index].Favorite = !s.transcript[index].Favorite
	return s.persistLocked(ctx)
}

// SetFeedback rates the answer at index. Only positive and negative are
// accepted; feedback cannot be cleared once set.
func (s *Session) SetFeedback(ctx context.Context, index int, value models.Feedback) error {
	if value != models.FeedbackPositive && value != models.FeedbackNegative {
		return ErrInvalidFeedback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAnswerLocked(index) {
		return nil
	}
	s.transcript[index].Feedback = value
	return s.persistLocked(ctx)
}

// Clear empties the transcript and releases the images it referenced.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := s.transcript
	s.transcript = []models.Entry{}
	err := s.persistLocked(ctx)

	if s.releaser != nil {
		for _, e := range cleared {
			if e.Kind != models.KindImage {
				continue
			}
			if rerr := s.releaser.Release(e.Content); rerr != nil {
				s.logger.Warn("failed to release image", "ref", e.Content, "error", rerr)
			}
		}
	}
	return err
}

func (s *Session) isAnswerLocked(index int) bool {
	return index >= 0 && index < len(s.transcript) && s.transcript[index].IsAnswer()
}
