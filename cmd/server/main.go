package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/quarrylabs/databook/pkg/api"
	"github.com/quarrylabs/databook/pkg/chat"
	"github.com/quarrylabs/databook/pkg/databook"
	"github.com/quarrylabs/databook/pkg/metric"
)

type config struct {
	Addr           string      `yaml:"addr"`
	DatabookPath   string      `yaml:"databook_path"`
	MetricsFile    string      `yaml:"metrics_file"`
	PreferredFiles []string    `yaml:"preferred_files"`
	LogLevel       string      `yaml:"log_level"`
	Chat           chat.Config `yaml:"chat"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "init":
		cmdInit(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: databook <command>\n\nCommands:\n  serve   Start the HTTP server\n  init    Create a development databook with sample facts\n")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := loadConfig(*cfgPath, bootLogger)

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Canonical-metric catalog.
	cat := metric.NewCatalog(cfg.MetricsFile)
	if err := cat.Load(); err != nil {
		logger.Error("failed to load metric catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("metric catalog loaded", "metrics", cat.Count(), "threshold", cat.Threshold())

	store := databook.NewStore(cfg.DatabookPath)
	if !store.Available() {
		logger.Warn("databook not found, value_fetch will fail until it exists",
			"path", cfg.DatabookPath, "hint", "run 'databook init'")
	}
	resolver := databook.NewResolver(store, cat, cfg.PreferredFiles, logger)

	mux := http.NewServeMux()

	// Chat turn endpoint, enabled when a provider key is configured.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	executor := chat.NewExecutor(resolver, logger)
	provider, err := chat.NewProvider(ctx, cfg.Chat, executor)
	if err != nil {
		logger.Warn("chat disabled", "reason", err)
	} else {
		mux.Handle("/api/turn_response", chat.NewHandler(provider, logger))
		logger.Info("chat enabled", "provider", provider.Name())
	}

	// MCP tool surface for external assistants.
	mcpSrv := api.NewMCPServer(resolver, logger)
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpSrv))

	mux.Handle("/", api.NewRouter(resolver, cat, store, logger))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	// SIGHUP: hot reload the metric catalog.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading metric catalog")
			if err := cat.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("metric catalog reloaded", "metrics", cat.Count())
			}
		}
	}()

	go func() {
		logger.Info("databook listening", "addr", cfg.Addr, "databook", cfg.DatabookPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Shutdown(context.Background())
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:         ":8480",
		DatabookPath: "db/databook.sqlite",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
