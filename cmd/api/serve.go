package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Afterburn3/StorySpotlight-Backend/core"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Load configuration from the environment, connect to PostgreSQL
(and Redis when REDIS_URL is set), apply migrations when AUTO_MIGRATE is
true and serve HTTP until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := core.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger := core.SetupLogging(cfg, cmd.OutOrStdout())
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := applyMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	var cache core.BookCache = core.NoopBookCache{}
	if cfg.RedisURL != "" {
		redisClient, err := core.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cache = core.NewRedisBookCache(redisClient, cfg.CacheTTL)
		logger.Info("book cache enabled", "ttl", cfg.CacheTTL.String())
	}

	users := core.NewPgUserRepository(db)
	authService := core.NewAuthService(
		users,
		core.NewBcryptHasher(cfg.BcryptCost),
		core.NewTokenIssuer(cfg.Secret, cfg.TokenTTL),
	)

	router := core.NewRouter(core.RouterDeps{
		Config:  cfg,
		Logger:  logger,
		Auth:    authService,
		Books:   core.NewPgBookRepository(db),
		Reviews: core.NewPgReviewRepository(db),
		Cache:   cache,
		Metrics: core.NewMetrics(),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting api server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
