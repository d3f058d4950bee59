package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance_insight/pkg/api"
	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/prompt"
	"balance_insight/pkg/core/ratio"
	"balance_insight/pkg/core/session"
	"balance_insight/pkg/core/store"
)

const sessionIdleLimit = 12 * time.Hour

func main() {
	configPath := flag.String("config", os.Getenv("BSI_CONFIG"), "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)
	slog.Info("balance insight starting", "port", cfg.Port, "provider", cfg.ActiveProvider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prompts := prompt.Get()
	if cfg.PromptsDir != "" {
		n, err := prompts.LoadFromDirectory(cfg.PromptsDir)
		if err != nil {
			slog.Warn("failed to load prompt overrides", "dir", cfg.PromptsDir, "error", err)
		} else {
			slog.Info("prompt overrides loaded", "dir", cfg.PromptsDir, "count", n)
		}
	}

	agents := agent.NewManager(cfg, prompts, slog.Default())
	if !agents.HasKey(agent.PurposeChat) {
		slog.Warn("no API key for the active provider; narrative features will report an auth error", "provider", cfg.ActiveProvider)
	}

	cache, err := store.Open(ctx, cfg, slog.Default())
	if err != nil {
		slog.Warn("result cache unavailable, continuing without it", "error", err)
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	sessions := session.NewStore()
	srv := api.NewServer(cfg.Addr(), api.Deps{
		Agents:   agents,
		Sessions: sessions,
		Processor: &store.Processor{
			Cache:   cache,
			Memo:    ratio.NewMemo(cfg.MemoSize),
			Markers: cfg.Markers,
			Logger:  slog.Default(),
		},
		Logger: slog.Default(),
	})

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()
	go pruneSessions(ctx, sessions)

	slog.Info("balance insight ready", "addr", cfg.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	cancel()
	slog.Info("balance insight stopped")
}

func pruneSessions(ctx context.Context, sessions *session.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(sessionIdleLimit); n > 0 {
				slog.Info("idle sessions pruned", "count", n, "remaining", sessions.Len())
			}
		}
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
