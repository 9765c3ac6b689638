package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/app"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/config"
)

func main() {
	// Flags
	addr := flag.String("addr", "", "Listen address (overrides HTTP_ADDR/PORT)")
	envFile := flag.String("env", ".env", "Optional dotenv file loaded before reading the environment")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Config
	if err := config.LoadDotEnv(*envFile); err != nil {
		logger.Error("failed to load env file", slog.String("path", *envFile), slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// App
	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	srv := application.HTTPServer(cfg.HTTP.Addr)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.HTTP.Addr), slog.String("store", cfg.Store.Kind), slog.String("tz", cfg.Report.Timezone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}
