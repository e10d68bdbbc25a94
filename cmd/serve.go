package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "progress-tracker.com/progress-tracker/internal/configs"
	httpapi "progress-tracker.com/progress-tracker/internal/http"
	middleware "progress-tracker.com/progress-tracker/internal/http/middlewares"
	"progress-tracker.com/progress-tracker/internal/logging"
	repository "progress-tracker.com/progress-tracker/internal/repositories"
	"progress-tracker.com/progress-tracker/internal/services"
)

const rateLimitSweepPeriod = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task HTTP API on the configured port and serves until SIGINT or SIGTERM",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Server.Env, cfg.Server.LogLevel)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		taskRepo, closeStore, err := openStore(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}

		var rateLimitStore middleware.RateLimitStore
		var closeRateLimit func()
		if cfg.Redis.Enabled() {
			redisClient, err := config.NewRedisClient(cfg.Redis.Addr())
			if err != nil {
				closeStore(context.Background())
				return err
			}
			rateLimitStore = middleware.NewRedisRateLimitStore(redisClient)
			closeRateLimit = redisClient.Close
			logger.Info("rate limiting shared through redis", slog.String("addr", cfg.Redis.Addr()))
		} else {
			memoryStore := middleware.NewMemoryRateLimitStore(rateLimitSweepPeriod)
			rateLimitStore = memoryStore
			closeRateLimit = memoryStore.Close
		}

		locator := services.NewLocator(
			services.Dependencies{TaskRepository: taskRepo},
			services.DefaultServiceTTL,
			services.DefaultSweepPeriod,
		)

		e := echo.New()
		httpapi.Register(e, httpapi.NewHandler(locator, logger), logger, httpapi.Options{
			RateLimitStore:     rateLimitStore,
			RateLimitPerMinute: cfg.Server.RateLimit,
			LogBodyMaxBytes:    cfg.Server.LogBodyMaxBytes,
			CORSAllowOrigins:   cfg.Server.CORSAllowOrigins,
		})

		addr := net.JoinHostPort("", strconv.Itoa(cfg.Server.Port))
		go func() {
			logger.Info("HTTP server listening", slog.String("addr", addr), slog.String("env", cfg.Server.Env))
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", slog.String("error", err.Error()))
			}
		}()

		wait := gfshutdown.GracefulShutdown(
			ctx,
			time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second,
			map[string]gfshutdown.Operation{
				"http-server": func(ctx context.Context) error {
					defer closeRateLimit()
					defer closeStore(ctx)
					defer locator.Close()
					return e.Shutdown(ctx)
				},
			},
		)

		if code := <-wait; code != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", code)
		}

		logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

// openStore connects the configured driver and prepares its schema. The
// returned func releases the connection.
func openStore(ctx context.Context, db config.DatabaseConfig, logger *slog.Logger) (repository.TaskRepository, func(context.Context), error) {
	switch db.Driver {
	case config.DriverSQLite:
		gormDB, err := config.NewSQLiteDB(db.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func(context.Context) {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}

		repo := repository.NewSQLiteTaskRepository(gormDB)
		if err := repo.Migrate(); err != nil {
			closeDB(ctx)
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Info("using sqlite store", slog.String("dsn", db.SQLiteDSN))

		return repo, closeDB, nil

	default:
		client, err := config.NewMongoClient(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoTaskRepository(client.Database(db.Name))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("using mongodb store", slog.String("host", db.Host), slog.String("database", db.Name))

		return repo, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				logging.Error(ctx, logger, err, "openStore.Disconnect")
			}
		}, nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
