package cli

import (
	"fmt"

	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite <index>",
	Short: "Toggle the favorite mark on an answer",
	Long: `Toggle the favorite mark on the answer at <index>.

Use "chatai transcript" to look up indexes.

Examples:
  chatai favorite 3`,
	Args: cobra.ExactArgs(1),
	RunE: runFavorite,
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <index> up|down",
	Short: "Rate an answer",
	Long: `Rate the answer at <index> as helpful (up) or unhelpful (down).

A rating can be changed any number of times but not removed.

Examples:
  chatai feedback 3 up
  chatai feedback 5 down`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"up", "down"},
	RunE:      runFeedback,
}

func runFavorite(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	if _, err := answerAt(index); err != nil {
		return err
	}

	if err := sess.ToggleFavorite(cmd.Context(), index); err != nil {
		return fmt.Errorf("toggle favorite: %w", err)
	}

	e, _ := sess.Entry(index)
	if e.Favorite {
		fmt.Fprintf(cmd.OutOrStdout(), "★ Marked answer %d as favorite\n", index)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed favorite mark from answer %d\n", index)
	}
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	value, err := models.ParseFeedback(args[1])
	if err != nil {
		return err
	}
	if _, err := answerAt(index); err != nil {
		return err
	}

	if err := sess.SetFeedback(cmd.Context(), index, value); err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Rated answer %d\n", value.Symbol(), index)
	return nil
}
