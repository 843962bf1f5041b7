package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	draftClear bool
)

var draftCmd = &cobra.Command{
	Use:   "draft [text]",
	Short: "Show or replace the saved draft",
	Long: `Show the saved draft, or replace it with [text].

The draft is what the chat screen's input box starts with. It is cleared
whenever a prompt is sent.

Examples:
  chatai draft
  chatai draft "compare bbolt and sqlite for"
  chatai draft --clear`,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().BoolVar(&draftClear, "clear", false, "empty the draft")
}

func runDraft(cmd *cobra.Command, args []string) error {
	if !draftClear && len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), sess.Draft())
		return nil
	}

	text := strings.Join(args, " ")
	if draftClear {
		text = ""
	}
	if err := sess.SetDraft(cmd.Context(), text); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}
