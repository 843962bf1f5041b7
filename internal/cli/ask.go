package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/raphaelgruber/chatai/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	askDraft bool
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask the text model a question",
	Long: `Ask the text model a question and print its answer.

The question and the answer are appended to the conversation and the prompt
is recorded in the search history. With --draft the saved draft is sent.

Examples:
  chatai ask "What is a monad?"
  chatai ask explain goroutines in one paragraph
  chatai ask --draft`,
	Args: func(cmd *cobra.Command, args []string) error {
		if askDraft && len(args) > 0 {
			return errors.New("either pass a prompt or --draft, not both")
		}
		if !askDraft && len(args) == 0 {
			return errors.New("requires a prompt")
		}
		return nil
	},
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askDraft, "draft", false, "send the saved draft")
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if askDraft {
		prompt = sess.Draft()
	}

	entry, err := submitAndWait(cmd.Context(), orchestrator.KindText, prompt)
	if err != nil {
		return err
	}
	if entry.Kind == models.KindAnswer {
		fmt.Fprintln(cmd.OutOrStdout(), entry.Content)
	}
	return nil
}

// submitAndWait sends one request, blocks until it resolves and returns the
// entry it produced.
func submitAndWait(ctx context.Context, kind orchestrator.Kind, prompt string) (models.Entry, error) {
	rep := &reporter{w: os.Stderr}
	orch := newOrchestrator(ctx, rep)

	// the question lands at base synchronously; its result follows it
	base := sess.Len()
	if err := orch.Submit(ctx, kind, prompt); err != nil {
		if errors.Is(err, orchestrator.ErrEmptyPrompt) {
			return models.Entry{}, errors.New("prompt is empty")
		}
		return models.Entry{}, fmt.Errorf("submit: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Generating %s...\n", pendingNoun(kind))
	orch.Wait()

	if rep.Failed() {
		return models.Entry{}, errCommandFailed
	}
	entry, ok := sess.Entry(base + 1)
	if !ok {
		return models.Entry{}, errors.New("no result was recorded")
	}
	return entry, nil
}

// pendingNoun names what a kind is waiting for.
func pendingNoun(kind orchestrator.Kind) string {
	if kind == orchestrator.KindImage {
		return "image"
	}
	return "answer"
}
