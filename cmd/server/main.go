package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hongminglow/budget-be/internal/auth"
	"github.com/hongminglow/budget-be/internal/config"
	"github.com/hongminglow/budget-be/internal/directory"
	"github.com/hongminglow/budget-be/internal/ledger"
	"github.com/hongminglow/budget-be/internal/logger"
	"github.com/hongminglow/budget-be/internal/server"
	"github.com/hongminglow/budget-be/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "budget",
		Short:         "Budget tracking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			loadLocalEnv()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Apply migrations and start the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|version]",
			Short:     "Manage the database schema",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down", "version"},
			RunE: func(_ *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return report(fmt.Errorf("load config: %w", err))
				}
				logger.Init(cfg.LogLevel, cfg.LogFormat)
				return report(postgres.Migrate(logger.L, cfg.DatabaseURL, args[0]))
			},
		},
	)
	return root
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return report(fmt.Errorf("load config: %w", err))
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := postgres.Migrate(logger.L, cfg.DatabaseURL, "up"); err != nil {
		return report(err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return report(fmt.Errorf("init database: %w", err))
	}
	defer db.Close()

	hasher, err := auth.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return report(err)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	users := db.Users()

	srv := server.New(cfg, server.Deps{
		Accounts:      directory.New(users, hasher),
		Ledger:        ledger.NewService(db.Transactions(), users),
		Authenticator: auth.NewAuthenticator(users, hasher, tokens),
		DB:            db,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("budget backend listening", slog.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return report(fmt.Errorf("http server: %w", err))
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.L.Warn("graceful shutdown error", slog.Any("error", err))
	}
	return nil
}

func report(err error) error {
	if err != nil {
		logger.L.Error("budget backend failed", slog.Any("error", err))
	}
	return err
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logger.L.Info("no .env file found; relying on existing environment")
	}
}
