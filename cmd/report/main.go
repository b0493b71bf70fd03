package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	classroomimpl "github.com/foxseedlab/shussekin/external/classroom"
	configloader "github.com/foxseedlab/shussekin/external/config"
	exportimpl "github.com/foxseedlab/shussekin/external/export"
	identityimpl "github.com/foxseedlab/shussekin/external/identity"
	runlogimpl "github.com/foxseedlab/shussekin/external/runlog"
	webhookimpl "github.com/foxseedlab/shussekin/external/webhook"
	"github.com/foxseedlab/shussekin/internal/config"
	"github.com/foxseedlab/shussekin/internal/report"
	"github.com/samber/do/v2"
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching report run")
	runReport(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	classroomimpl.RegisterDI(injector)
	identityimpl.RegisterDI(injector)
	exportimpl.RegisterDI(injector)
	runlogimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	report.RegisterDI(injector)

	return injector
}

func runReport(injector do.Injector) {
	orchestrator, err := do.Invoke[*report.Orchestrator](injector)
	if err != nil {
		slog.Error("failed to resolve report orchestrator", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := orchestrator.Run(ctx); err != nil {
		slog.Error("report run failed", "error", err)
		os.Exit(1)
	}
}
