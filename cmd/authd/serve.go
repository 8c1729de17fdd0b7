// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/skillbridge/authd/internal/auth"
	authpg "github.com/skillbridge/authd/internal/auth/postgres"
	"github.com/skillbridge/authd/internal/config"
	"github.com/skillbridge/authd/internal/gateway"
	"github.com/skillbridge/authd/internal/logging"
	"github.com/skillbridge/authd/internal/observability"
	"github.com/skillbridge/authd/internal/store"
)

const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth HTTP service",
		Long: `Start the auth service: the HTTP gateway for registration, login,
logout, and session checks, plus the metrics and health endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}

	cmd.Flags().String("listen-addr", config.Default().ListenAddr, "gateway listen address")
	cmd.Flags().String("metrics-addr", config.Default().MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("cors-origin", config.Default().CORSOrigin, "Access-Control-Allow-Origin header value")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending schema migrations before serving")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, autoMigrate bool) error {
	logging.SetDefault("authd", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting authd",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	if autoMigrate {
		if err := migrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("schema migrations applied")
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, err := auth.NewServiceWithLogger(
		authpg.NewAccountRepository(pool),
		authpg.NewSessionRepository(pool),
		auth.NewPBKDF2Hasher(),
		authpg.NewTransactor(pool),
		logger,
	)
	if err != nil {
		return err
	}

	// The service is ready when the database answers.
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
	}

	var metrics *observability.Metrics
	if obsServer != nil {
		metrics = obsServer.Metrics()
	}

	gwServer, err := gateway.NewServer(cfg.ListenAddr, cfg.CORSOrigin, svc, metrics, logger)
	if err != nil {
		return err
	}

	var obsErrCh <-chan error
	if obsServer != nil {
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return oops.With("addr", cfg.MetricsAddr).Wrap(err)
		}
	}

	gwErrCh, err := gwServer.Start()
	if err != nil {
		stopObservability(obsServer)
		return oops.With("addr", cfg.ListenAddr).Wrap(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("authd ready", "addr", gwServer.Addr())

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case runErr = <-gwErrCh:
		logger.Error("gateway server failed", "error", runErr)
	case runErr = <-obsErrCh:
		logger.Error("observability server failed", "error", runErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := gwServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping gateway server", "error", err)
	}
	stopObservability(obsServer)

	logger.Info("shutdown complete")
	return runErr
}

func stopObservability(s *observability.Server) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}
