// Package models defines the data structures of a chatai conversation.
package models

import "fmt"

// EntryKind identifies what a transcript entry holds.
type EntryKind string

const (
	KindQuestion EntryKind = "question"
	KindAnswer   EntryKind = "answer"
	KindImage    EntryKind = "image"
)

// Feedback is the rating a user attached to an answer.
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// ParseFeedback maps user input to a settable feedback value.
// FeedbackNone is never returned without an error: feedback cannot be cleared.
func ParseFeedback(s string) (Feedback, error) {
	switch s {
	case "positive", "up", "+", "👍":
		return FeedbackPositive, nil
	case "negative", "down", "-", "👎":
		return FeedbackNegative, nil
	default:
		return FeedbackNone, fmt.Errorf("invalid feedback %q (expected up or down)", s)
	}
}

// Symbol returns the thumb shown next to a rated answer.
func (f Feedback) Symbol() string {
	switch f {
	case FeedbackPositive:
		return "👍"
	case FeedbackNegative:
		return "👎"
	default:
		return ""
	}
}

// Entry is one item of the transcript.
// Favorite and Feedback are only meaningful for answers.
type Entry struct {
	Kind     EntryKind `json:"kind"`
	Content  string    `json:"content"`
	Favorite bool      `json:"favorite,omitempty"`
	Feedback Feedback  `json:"feedback,omitempty"`
}

// Question creates a question entry.
func Question(text string) Entry {
	return Entry{Kind: KindQuestion, Content: text}
}

// Answer creates an answer entry with no favorite mark and no feedback.
func Answer(text string) Entry {
	return Entry{Kind: KindAnswer, Content: text}
}

// Image creates an image entry pointing at ref.
func Image(ref string) Entry {
	return Entry{Kind: KindImage, Content: ref}
}

// IsAnswer reports whether favorite and feedback apply to e.
func (e Entry) IsAnswer() bool {
	return e.Kind == KindAnswer
}
