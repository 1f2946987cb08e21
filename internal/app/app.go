package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brijesh59/kite/internal/config"
	"github.com/Brijesh59/kite/internal/infrastructure/database"
	"github.com/Brijesh59/kite/internal/logger"
	"github.com/Brijesh59/kite/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

// Run connects the stores, serves the API and blocks until SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.TracingEnabled,
		Environment:   cfg.Env,
		CollectorAddr: cfg.CollectorAddr,
	})
	if err != nil {
		return err
	}

	gdb, err := database.Open(cfg.DSN, cfg.GinMode == gin.DebugMode)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}
	log.Info("Database connected")

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Redis connected", zap.String("addr", cfg.RedisAddr))

	container, err := NewContainer(cfg, gdb, rdb.Client, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warn("failed to close connections", zap.Error(err))
		}
	}()

	router, err := container.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	return nil
}
