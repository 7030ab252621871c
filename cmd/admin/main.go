package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/tournament-admin/internal/app"
	"github.com/riskibarqy/tournament-admin/internal/config"
	"github.com/riskibarqy/tournament-admin/internal/observability"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 2
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).Named(cfg.ServiceName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	state, err := app.New(cfg, app.Options{Logger: logger})
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	command := "help"
	if len(args) > 0 {
		command = args[0]
	}
	ctx, span := otel.Tracer("tournament-admin/cmd/admin").Start(ctx, "admin "+command)
	span.SetAttributes(attribute.String("admin.api_base_url", cfg.APIBaseURL))
	defer span.End()

	logger.DebugContext(ctx, "run command", "command", command, "api_base_url", cfg.APIBaseURL)
	return run(ctx, state, args, os.Stdin, os.Stdout, os.Stderr)
}
