package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/app"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/config"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "YouTube channel and keyword analyser",
	Long: `Collects a channel's or keyword's videos from YouTube, enriches each video
with its format, opening transcript and top comments, stores the rows in
PostgreSQL and asks an LLM to analyse them or draft new content.`,
	Example: `  # Ingest a channel and store its videos
  analyzer channel "https://www.youtube.com/@biolab"

  # Search a keyword and analyse the longform results
  analyzer keyword "효소" --max 50
  analyzer analyze --source keyword --search-id 20250301120000-ab12cd

  # Draft a new video from the best performing rows
  analyzer generate --source keyword --keyword "효소" --search-id 20250301120000-ab12cd`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Logging.Level
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logger, err = util.NewLogger(level, cfg.Logging.File)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// withContainer assembles services for one command and releases them afterwards.
func withContainer(cmd *cobra.Command, run func(ctx context.Context, c *app.Container) error) error {
	ctx := cmd.Context()
	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		return err
	}
	defer container.Close()

	return run(ctx, container)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
