package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/ratio"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with keys masked",
	RunE:  runConfigShow,
}

var configSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose a provider and store its API key",
	RunE:  runConfigSetup,
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetupCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	fmt.Fprintln(out, RenderTitle("CONFIGURATION"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-18s %s\n", "Active provider", cfg.ActiveProvider)
	fmt.Fprintf(out, "  %-18s %s\n", "Log level", cfg.LogLevel)
	fmt.Fprintf(out, "  %-18s %d\n", "Port", cfg.Port)
	cache := cfg.CachePath
	if cfg.DatabaseURL != "" {
		cache = "postgres"
	}
	fmt.Fprintf(out, "  %-18s %s\n", "Result cache", cache)
	fmt.Fprintln(out)

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := cfg.Providers[name]
		fmt.Fprintf(out, "  %-18s model=%s key=%s\n", name, p.Model, maskAPIKey(p.APIKey))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", mutedStyle.Render("Markers"))
	fmt.Fprintf(out, "  %-18s %s\n", "Total assets", cfg.Markers.TotalAssets)
	fmt.Fprintf(out, "  %-18s %s\n", "Short-term assets", cfg.Markers.ShortTermAssets)
	fmt.Fprintf(out, "  %-18s %s\n", "Short-term debt", cfg.Markers.ShortTermLiabilities)
	fmt.Fprintln(out)
	return nil
}

func runConfigSetup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider := cfg.ActiveProvider
	apiKey := ""
	labels := "vas"
	if cfg.Markers == ratio.EnglishMarkers() {
		labels = "ifrs"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Text-generation provider").
				Options(
					huh.NewOption("Gemini (genai SDK)", config.ProviderGemini),
					huh.NewOption("Gemini (legacy SDK)", config.ProviderGeminiLegacy),
					huh.NewOption("DeepSeek", config.ProviderDeepSeek),
					huh.NewOption("Qwen (DashScope)", config.ProviderQwen),
				).
				Value(&provider),
			huh.NewInput().
				Title("API key").
				Description("Leave blank to keep the current key.").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewSelect[string]().
				Title("Statement labels").
				Options(
					huh.NewOption("Vietnamese (TỔNG CỘNG TÀI SẢN)", "vas"),
					huh.NewOption("English (TOTAL ASSETS)", "ifrs"),
				).
				Value(&labels),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	cfg.ActiveProvider = provider
	if apiKey != "" {
		p := cfg.Providers[provider]
		p.APIKey = apiKey
		cfg.Providers[provider] = p
	}
	cfg.Markers = ratio.DefaultMarkers()
	if labels == "ifrs" {
		cfg.Markers = ratio.EnglishMarkers()
	}

	path := config.DefaultPath()
	if strings.EqualFold(filepath.Ext(flagConfig), ".toml") {
		path = flagConfig
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n  Saved to %s\n\n", path)
	return nil
}
