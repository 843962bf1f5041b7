// Package cli provides the command-line interface for chatai.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/chatai/internal/config"
	"github.com/raphaelgruber/chatai/internal/images"
	"github.com/raphaelgruber/chatai/internal/metrics"
	"github.com/raphaelgruber/chatai/internal/session"
	"github.com/raphaelgruber/chatai/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	ephemeral bool
	storeFlag string
	themeFlag string

	// Global state, set up in PersistentPreRunE
	cfg       config.Config
	logger    *slog.Logger
	closeLog  func() error
	st        store.Store
	sess      *session.Session
	vault     *images.Vault
	collector *metrics.Collector

	// interactive is true while the full-screen UI owns the terminal.
	interactive bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatai",
	Short: "Chat with a text model and generate images",
	Long: `chatai is a single-user chat client for generative AI services.

Ask questions, generate images, mark favorite answers and rate them.
The conversation, search history and draft survive restarts.

Run without a subcommand to open the chat screen.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip session setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		interactive = !cmd.HasParent() && isTerminal(os.Stdout)
		return setup(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if interactive {
			return runTUI(cmd.Context())
		}
		return printTranscript(cmd.OutOrStdout(), false)
	},
}

// setup loads the configuration and opens the session.
func setup(ctx context.Context) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	applyFlags(&cfg)

	logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel, interactive)
	slog.SetDefault(logger)
	collector = metrics.NewCollector()

	st, err = store.Open(ctx, storeOptions(cfg), logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	vault, err = images.NewVault("")
	if err != nil {
		return err
	}

	sess, err = session.Load(ctx, st, logger,
		session.WithMetrics(collector),
		session.WithImageReleaser(vault),
	)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	logger.Debug("session ready",
		"store", cfg.Store,
		"entries", sess.Len(),
		"text_provider", cfg.TextProvider,
		"image_provider", cfg.ImageProvider)
	return nil
}

// applyFlags lets global flags override the loaded configuration.
func applyFlags(c *config.Config) {
	if storeFlag != "" {
		c.Store = storeFlag
	}
	if ephemeral {
		c.Store = config.StoreMemory
	}
	if themeFlag != "" {
		c.Theme = themeFlag
	}
	if verbose {
		c.LogLevel = slog.LevelDebug
	}
}

func storeOptions(c config.Config) store.Options {
	return store.Options{
		Backend:     c.Store,
		Path:        c.StoreFile(),
		RedisURL:    c.RedisURL,
		RedisPrefix: c.RedisPrefix,
		Surreal: store.SurrealConfig{
			URL:       c.SurrealDBURL,
			Namespace: c.SurrealDBNamespace,
			Database:  c.SurrealDBDatabase,
			Username:  c.SurrealDBUser,
			Password:  c.SurrealDBPass,
			AuthLevel: c.SurrealDBAuthLevel,
		},
	}
}

// shutdown releases everything setup acquired. Safe to call after a partial setup.
func shutdown() {
	if logger != nil && collector != nil {
		logger.Info("session stats", "metrics", collector.Snapshot())
	}
	if vault != nil {
		if err := vault.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove images: %v\n", err)
		}
	}
	if st != nil {
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
	}
	if closeLog != nil {
		_ = closeLog()
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer shutdown()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return err
	}
	if sess != nil && !interactive {
		if err := sess.LastPersistError(); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "session store (bolt, sqlite, surreal, redis, memory)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", "display theme (light, dark)")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints the build version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chatai %s\n", Version)
	},
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// errCommandFailed signals that a request failed and was already reported.
var errCommandFailed = errors.New("request failed")
