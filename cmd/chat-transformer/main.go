package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/infrastructure/awsclient"
	"jan-server/services/lifelog-api/internal/infrastructure/catalog"
	"jan-server/services/lifelog-api/internal/infrastructure/crontab"
	"jan-server/services/lifelog-api/internal/infrastructure/logger"
	"jan-server/services/lifelog-api/internal/infrastructure/observability"
	"jan-server/services/lifelog-api/internal/infrastructure/silver"
	"jan-server/services/lifelog-api/internal/infrastructure/storage"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chat-transformer",
	Short: "Rebuild the partitioned chat message table from the bronze layer",
	Long: `chat-transformer parses every validated chat export, writes one Parquet
file per message date and registers the partitions in the catalog.

Examples:
  # Run once and exit
  chat-transformer

  # Keep running, rebuilding every night at 03:00
  chat-transformer --schedule "0 3 * * *"`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().String("schedule", "", "cron expression; overrides TRANSFORM_SCHEDULE, empty runs once")
	rootCmd.Flags().Duration("timeout", 0, "bound for a single run; overrides TRANSFORM_TIMEOUT")
}

func run(cmd *cobra.Command, _ []string) error {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if schedule, _ := cmd.Flags().GetString("schedule"); schedule != "" {
		cfg.TransformSchedule = schedule
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.TransformTimeout = timeout
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, "chat-transformer", log)
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	var tableCatalog chat.Catalog
	if cfg.GlueDatabase != "" {
		clients, err := awsclient.Shared(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initialize aws clients: %w", err)
		}
		tableCatalog = catalog.NewGlueCatalog(clients.Glue(), cfg.GlueDatabase, cfg.ChatTable, cfg.ChatSilverLocation(), log)
	} else {
		log.Warn().Msg("GLUE_DATABASE is not set; partitions will not be registered")
	}

	transformer := chat.NewTransformer(store, silver.NewEncoder(), tableCatalog, cfg.ChatBronzePrefix(), cfg.ChatSilverPrefix(), log)

	if cfg.TransformSchedule != "" {
		return crontab.NewCrontab(transformer, cfg.TransformSchedule, cfg.TransformTimeout, log).Run(ctx)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.TransformTimeout)
	defer cancel()
	result, err := transformer.Run(runCtx)
	if err != nil {
		return err
	}
	log.Info().
		Str("run_id", result.RunID).
		Str("outcome", result.Outcome).
		Int("files", result.Files).
		Int("messages", result.Messages).
		Int("partitions_written", result.PartitionsWritten).
		Int("partitions_unchanged", result.PartitionsUnchanged).
		Msg("transform complete")
	return nil
}
