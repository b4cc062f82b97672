// # cmd/cascade/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cascade/internal/core/app"
	"cascade/internal/core/config"
	"cascade/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./cascade.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	watch      = flag.Bool("watch", false, "Keep running and re-index on filesystem changes")
	format     = flag.String("format", "tsv", "Symbol output format: tsv or json")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("cascade v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config; positional arguments override the configured workspaces.
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		cfg.Workspaces = flag.Args()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, VERSION)
	if err != nil {
		slog.Warn("failed to initialize tracing", "error", err)
	} else {
		defer shutdownTracing(context.Background())
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	var obsServer *ObservabilityServer
	if cfg.Observability.Address != "" {
		obsServer = NewObservabilityServer(cfg.Observability.Address, app.NewHealthService(a))
		if err := obsServer.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer obsServer.Stop(context.Background())
	}

	if err := a.InitialScan(ctx); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if err := a.WriteSymbols(os.Stdout, *format); err != nil {
		slog.Error("failed to write symbols", "error", err)
		os.Exit(1)
	}

	if *once || (!*watch && !cfg.Watch.Enabled) {
		return
	}

	if err := a.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	slog.Info("watching for stylesheet changes", "workspaces", cfg.Workspaces)

	<-ctx.Done()
	slog.Info("shutting down")
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	// Missing default config falls back to built-in defaults; an explicit
	// -config path must exist.
	if os.IsNotExist(err) && path == "./cascade.toml" {
		return config.DefaultConfig(), nil
	}
	return nil, err
}
