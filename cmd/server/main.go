package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-service/common/logger"
	"portfolio-service/internal/app"
	"portfolio-service/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogLogger := logger.NewWithServiceContext(app.ServiceName, app.Version, cfg.Env)
	slog.SetDefault(slogLogger)

	application, err := app.New(context.Background(), cfg, slogLogger)
	if err != nil {
		slogLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := application.Run(); err != nil {
			slogLogger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogLogger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		slogLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slogLogger.Info("server exited gracefully")
}
