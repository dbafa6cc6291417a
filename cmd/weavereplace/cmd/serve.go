package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/core/api"
	"github.com/solatis/weavereplace/internal/core/db"
	"github.com/solatis/weavereplace/internal/core/server"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC Weave service",
		RunE:  runServe,
	}
	serveCmd.Flags().String("host", "", "gRPC server host")
	serveCmd.Flags().Int("port", 0, "gRPC server port")
	serveCmd.Flags().String("metrics-addr", "", "Prometheus listener address (empty keeps config)")
	serveCmd.Flags().Bool("no-db", false, "serve inline requests only, without a database")
	return serveCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, processor, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = cmd.Flags().GetString("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var store *db.Store
	if noDB, _ := cmd.Flags().GetBool("no-db"); !noDB {
		database, err := db.Open(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		statuses, err := db.MigrateStatus(database)
		if err != nil {
			return fmt.Errorf("failed to check migrations: %w", err)
		}
		for _, s := range statuses {
			if !s.Applied {
				return fmt.Errorf("migration %s not applied - run 'weavereplace migrate up' first", s.ID)
			}
		}

		store, err = db.NewStore(database)
		if err != nil {
			return fmt.Errorf("failed to load queries: %w", err)
		}
	}

	service, err := api.NewWeaveService(processor, store, &cfg.Server, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, server.NewMetrics(nil), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting weavereplace",
		zap.String("version", Version),
		zap.String("addr", cfg.Server.Addr()),
		zap.Bool("store", store != nil),
	)
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return grpcServer.Shutdown(ctx)
	}
}
