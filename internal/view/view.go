// Package view derives what the user sees from the transcript.
package view

import (
	"iter"
	"strings"

	"github.com/raphaelgruber/chatai/internal/models"
)

// ExportFileName is the default name of an exported transcript.
const ExportFileName = "chat-history.txt"

// Export line prefixes.
const (
	PrefixQuestion = "👤 User:"
	PrefixAnswer   = "🤖 AI:"
	PrefixImage    = "🖼️ Image URL:"
)

// VisibleEntries yields (index, entry) pairs in transcript order. With
// favoritesOnly set only favorite answers are yielded; indexes always refer to
// the full transcript. The sequence can be ranged over any number of times.
func VisibleEntries(transcript []models.Entry, favoritesOnly bool) iter.Seq2[int, models.Entry] {
	return func(yield func(int, models.Entry) bool) {
		for i, e := range transcript {
			if favoritesOnly && !(e.IsAnswer() && e.Favorite) {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// Prefix returns the export prefix for kind.
func Prefix(kind models.EntryKind) string {
	switch kind {
	case models.KindQuestion:
		return PrefixQuestion
	case models.KindAnswer:
		return PrefixAnswer
	case models.KindImage:
		return PrefixImage
	default:
		return string(kind) + ":"
	}
}

// ExportText renders the transcript as plain text, one block per entry
// separated by a blank line.
func ExportText(transcript []models.Entry) string {
	blocks := make([]string, 0, len(transcript))
	for _, e := range transcript {
		blocks = append(blocks, Prefix(e.Kind)+" "+e.Content)
	}
	return strings.Join(blocks, "\n\n")
}
