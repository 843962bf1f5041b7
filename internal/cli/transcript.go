package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/raphaelgruber/chatai/internal/view"
	"github.com/spf13/cobra"
)

// Texts shown when there is nothing to list.
const (
	emptyTranscript = "Start by asking something below."
	emptyHistory    = "No searches yet"
	emptyFavorites  = "No favorite answers yet."
	imageMissing    = "[image no longer available]"
)

var (
	transcriptFavorites bool
)

var transcriptCmd = &cobra.Command{
	Use:     "transcript",
	Aliases: []string{"ls"},
	Short:   "Show the conversation",
	Long: `Show the conversation with the index of every entry.

Indexes are what favorite and feedback expect. Favorite answers are marked
with ★ and rated answers with 👍 or 👎.

Examples:
  chatai transcript
  chatai transcript --favorites`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTranscript(cmd.OutOrStdout(), transcriptFavorites)
	},
}

func init() {
	transcriptCmd.Flags().BoolVarP(&transcriptFavorites, "favorites", "f", false, "show favorite answers only")
}

func printTranscript(w io.Writer, favoritesOnly bool) error {
	shown := 0
	for i, e := range view.VisibleEntries(sess.Transcript(), favoritesOnly) {
		writeEntry(w, i, e)
		shown++
	}
	if shown == 0 {
		if favoritesOnly {
			fmt.Fprintln(w, emptyFavorites)
		} else {
			fmt.Fprintln(w, emptyTranscript)
		}
	}
	return nil
}

// writeEntry prints one transcript line with its index and markers.
func writeEntry(w io.Writer, index int, e models.Entry) {
	content := e.Content
	if e.Kind == models.KindImage && !vault.Resolves(e.Content) {
		content = imageMissing
	}

	marks := ""
	if e.IsAnswer() {
		if e.Favorite {
			marks += " ★"
		}
		if sym := e.Feedback.Symbol(); sym != "" {
			marks += " " + sym
		}
	}
	fmt.Fprintf(w, "[%d] %s %s%s\n", index, view.Prefix(e.Kind), content, marks)
}

// parseIndex reads a transcript or history position from an argument.
func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", arg)
	}
	return i, nil
}

// answerAt returns the answer at index or an error naming what is there instead.
func answerAt(index int) (models.Entry, error) {
	e, ok := sess.Entry(index)
	if !ok {
		return models.Entry{}, fmt.Errorf("no entry at index %d", index)
	}
	if !e.IsAnswer() {
		return models.Entry{}, fmt.Errorf("entry %d is a %s, not an answer", index, e.Kind)
	}
	return e, nil
}
