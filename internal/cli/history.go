package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous prompts",
	Long: `List previous prompts, most recent first.

Examples:
  chatai history
  chatai history recall 0
  chatai history rm 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history := sess.History()
		if len(history) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), emptyHistory)
			return nil
		}
		for i, prompt := range history {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", i, prompt)
		}
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a prompt from the history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		history := sess.History()
		if index >= len(history) {
			return fmt.Errorf("no prompt at index %d", index)
		}
		if err := sess.RemovePrompt(cmd.Context(), index); err != nil {
			return fmt.Errorf("remove prompt: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", history[index])
		return nil
	},
}

var historyRecallCmd = &cobra.Command{
	Use:   "recall <index>",
	Short: "Load a previous prompt into the draft",
	Long: `Load a previous prompt into the draft without sending it.

Send it afterwards with "chatai ask --draft" or edit it in the chat screen.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		text, ok, err := sess.RecallPrompt(cmd.Context(), index)
		if err != nil {
			return fmt.Errorf("recall prompt: %w", err)
		}
		if !ok {
			return fmt.Errorf("no prompt at index %d", index)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyRmCmd)
	historyCmd.AddCommand(historyRecallCmd)
}
