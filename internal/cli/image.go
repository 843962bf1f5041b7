package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/raphaelgruber/chatai/internal/models"
	"github.com/raphaelgruber/chatai/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	imageSave string
)

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate an image from a prompt",
	Long: `Generate an image with the configured image provider.

Generated images live in a temporary directory that is removed when chatai
exits, so use --save to keep the file. The conversation still records the
prompt and the image entry.

Examples:
  chatai image "a lighthouse at dusk, oil painting"
  chatai image "pixel art cat" --save cat.webp`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImage,
}

func init() {
	imageCmd.Flags().StringVarP(&imageSave, "save", "s", "", "copy the generated image to this file")
}

func runImage(cmd *cobra.Command, args []string) error {
	entry, err := submitAndWait(cmd.Context(), orchestrator.KindImage, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if entry.Kind != models.KindImage {
		return fmt.Errorf("unexpected %s entry", entry.Kind)
	}

	if imageSave == "" {
		fmt.Fprintln(cmd.OutOrStdout(), entry.Content)
		return nil
	}

	path, err := vault.Path(entry.Content)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if err := os.WriteFile(imageSave, data, 0o644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved image to %s\n", imageSave)
	return nil
}
