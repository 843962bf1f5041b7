package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	clearYes bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole conversation",
	Long: `Delete every question, answer and image of the conversation.

This cannot be undone. The search history and the draft are kept.
Requires confirmation unless --yes is used.

Examples:
  chatai clear
  chatai clear --yes`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	n := sess.Len()
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear.")
		return nil
	}

	// Confirm deletion
	if !clearYes {
		fmt.Fprintf(cmd.OutOrStdout(), "About to delete %d entries.\n", n)
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Clear chat history?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := sess.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Chat history cleared")
	return nil
}

// confirm asks a yes/no question; anything but y or yes means no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
