// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/internal/auth"
	authpg "github.com/quillnotes/quill/internal/auth/postgres"
	"github.com/quillnotes/quill/internal/config"
	"github.com/quillnotes/quill/internal/logging"
	"github.com/quillnotes/quill/internal/notes"
	notespg "github.com/quillnotes/quill/internal/notes/postgres"
	"github.com/quillnotes/quill/internal/observability"
	"github.com/quillnotes/quill/internal/store"
	"github.com/quillnotes/quill/internal/web"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notes API server",
		Long: `Start the HTTP API server: applies pending schema migrations,
starts the session sweeper, and serves the auth and notes endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	// Flags mirror config keys; file and env values win unless the flag
	// is set explicitly.
	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("listen-addr", ":8080", "HTTP API listen address")
	cmd.Flags().String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("environment", config.EnvDevelopment, "deployment environment (development or production)")
	cmd.Flags().String("frontend-origin", "http://localhost:5173", "browser origin allowed by CORS")
	cmd.Flags().String("public-origin", "http://localhost:8080", "origin this API is served from")
	cmd.Flags().Duration("session-max-age", auth.DefaultSessionMaxAge, "session lifetime")
	cmd.Flags().Duration("sweep-interval", auth.DefaultSweepInterval, "expired session purge interval")
	cmd.Flags().String("log-format", "json", "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("quill", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting quill",
		"listen_addr", cfg.ListenAddr,
		"environment", cfg.Environment,
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	if err := autoMigrate(cfg.DatabaseURL, logger); err != nil {
		return err
	}

	// Wire the domain.
	hasher := auth.NewArgon2idHasher()

	authSvc, err := auth.NewService(authpg.NewUserRepository(pool), hasher)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	sessions, err := auth.NewSessionManager(authpg.NewSessionRepository(pool), cfg.SessionMaxAge)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	notesSvc, err := notes.NewService(notespg.NewNoteRepository(pool))
	if err != nil {
		return fmt.Errorf("failed to create notes service: %w", err)
	}

	sweeper, err := auth.NewSweeper(sessions, cfg.SweepInterval, observability.RecordSessionsSwept)
	if err != nil {
		return fmt.Errorf("failed to create session sweeper: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability server is optional; readiness tracks the database.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrCh, startErr := obsServer.Start()
		if startErr != nil {
			return fmt.Errorf("failed to start observability server: %w", startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	}

	apiServer, err := web.NewServer(&cfg, authSvc, sessions, notesSvc, metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to create api server: %w", err)
	}

	apiErrCh, err := apiServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	sweeper.Start(ctx)

	// Handle signals.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("quill ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// autoMigrate applies pending schema migrations at startup so a fresh
// database works without a separate migrate step.
func autoMigrate(databaseURL string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Debug("error closing migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	schemaVersion, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("schema up to date", "version", schemaVersion, "dirty", dirty)
	return nil
}

// monitorServerErrors cancels the context when a server reports a fatal
// error, so one failed listener takes the whole process down cleanly.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
