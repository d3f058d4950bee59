package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/ingest"
	"balance_insight/pkg/core/prompt"
	"balance_insight/pkg/core/ratio"
	"balance_insight/pkg/core/store"
)

var (
	flagConfig   string
	flagLogLevel string
	flagNoCache  bool
	flagTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "balancectl",
	Short:         "Balance sheet ratio analysis with an AI assistant",
	Long:          "Process a balance sheet spreadsheet into growth and composition ratios, render charts, export to Excel, and ask a hosted model about the figures.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		setupLogging(flagLogLevel)
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("  Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "YAML or TOML config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the result cache")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "Timeout for model requests")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newManager(cfg config.Config) *agent.Manager {
	prompts := prompt.Get()
	if cfg.PromptsDir != "" {
		if _, err := prompts.LoadFromDirectory(cfg.PromptsDir); err != nil {
			slog.Warn("failed to load prompt overrides", "dir", cfg.PromptsDir, "error", err)
		}
	}
	return agent.NewManager(cfg, prompts, slog.Default())
}

// loadTable parses and processes the statement at path, going through the
// result cache unless --no-cache is set.
func loadTable(ctx context.Context, cfg config.Config, path string) (ratio.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	rows, err := ingest.Parse(path, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p := &store.Processor{Markers: cfg.Markers, Logger: slog.Default()}
	if !flagNoCache {
		cache, err := store.Open(ctx, cfg, slog.Default())
		if err != nil {
			slog.Warn("cache unavailable, computing directly", "error", err)
		} else if cache != nil {
			defer cache.Close()
			p.Cache = cache
		}
	}
	return p.Process(ctx, rows)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flagTimeout)
}
