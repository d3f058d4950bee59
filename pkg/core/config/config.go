// Package config loads dashboard settings from defaults, an optional YAML or
// TOML file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"balance_insight/pkg/core/ratio"
)

// Config holds all runtime settings.
type Config struct {
	Port           int                       `yaml:"port" toml:"port" json:"port"`
	LogLevel       string                    `yaml:"log_level" toml:"log_level" json:"log_level"`
	ActiveProvider string                    `yaml:"active_provider" toml:"active_provider" json:"active_provider"`
	Agents         map[string]AgentConfig    `yaml:"agents" toml:"agents" json:"agents"`
	Providers      map[string]ProviderConfig `yaml:"providers" toml:"providers" json:"providers"`
	Markers        ratio.Markers             `yaml:"markers" toml:"markers" json:"markers"`
	Language       string                    `yaml:"language" toml:"language" json:"language,omitempty"`
	DatabaseURL    string                    `yaml:"database_url" toml:"database_url" json:"-"`
	CachePath      string                    `yaml:"cache_path" toml:"cache_path" json:"cache_path"`
	PromptsDir     string                    `yaml:"prompts_dir" toml:"prompts_dir" json:"prompts_dir,omitempty"`
	MemoSize       int                       `yaml:"memo_size" toml:"memo_size" json:"memo_size"`
}

// AgentConfig overrides the provider or model for one purpose ("summary",
// "chat").
type AgentConfig struct {
	Provider    string `yaml:"provider" toml:"provider" json:"provider,omitempty"`
	Model       string `yaml:"model" toml:"model" json:"model,omitempty"`
	Description string `yaml:"description" toml:"description" json:"description,omitempty"`
}

// ProviderConfig holds credentials and endpoint for one provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key" toml:"api_key" json:"-"`
	Model   string `yaml:"model" toml:"model" json:"model,omitempty"`
	BaseURL string `yaml:"base_url" toml:"base_url" json:"base_url,omitempty"`
}

// HasKey reports whether an API key is configured.
func (p ProviderConfig) HasKey() bool { return strings.TrimSpace(p.APIKey) != "" }

// Provider names.
const (
	ProviderGemini       = "gemini"
	ProviderGeminiLegacy = "gemini_legacy"
	ProviderDeepSeek     = "deepseek"
	ProviderQwen         = "qwen"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           8080,
		LogLevel:       "info",
		ActiveProvider: ProviderGemini,
		Agents: map[string]AgentConfig{
			"summary": {Description: "Balance sheet commentary"},
			"chat":    {Description: "Financial assistant chat"},
		},
		Providers: map[string]ProviderConfig{
			ProviderGemini:       {Model: "gemini-2.5-flash"},
			ProviderGeminiLegacy: {Model: "gemini-2.5-flash"},
			ProviderDeepSeek:     {Model: "deepseek-chat", BaseURL: "https://api.deepseek.com/chat/completions"},
			ProviderQwen:         {Model: "qwen-max", BaseURL: "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"},
		},
		Markers:   ratio.DefaultMarkers(),
		CachePath: filepath.Join(".cache", "balance_insight.db"),
		MemoSize:  64,
	}
}

// Dir returns the XDG config directory for the CLI.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "balance_insight")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "balance_insight")
}

// DefaultPath is the config file written by Save and read when Load is given
// no path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load builds the configuration. With an empty path the file at DefaultPath
// is read when present; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath()); err == nil {
			path = DefaultPath()
		}
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	applyEnv(&cfg)

	cfg.Markers = cfg.Markers.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as TOML to path, creating the directory. The file holds
// API keys and is created owner-readable only.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	setKey := func(provider, env string) {
		if v := os.Getenv(env); v != "" {
			p := cfg.Providers[provider]
			p.APIKey = v
			cfg.Providers[provider] = p
		}
	}
	setKey(ProviderGemini, "GEMINI_API_KEY")
	setKey(ProviderGeminiLegacy, "GEMINI_API_KEY")
	setKey(ProviderDeepSeek, "DEEPSEEK_API_KEY")
	setKey(ProviderQwen, "DASHSCOPE_API_KEY")

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.ActiveProvider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		p := cfg.Providers[cfg.ActiveProvider]
		p.Model = v
		cfg.Providers[cfg.ActiveProvider] = p
	}
	cfg.Port = envInt("PORT", cfg.Port)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseURL = envStr("DATABASE_URL", cfg.DatabaseURL)
	cfg.CachePath = envStr("CACHE_PATH", cfg.CachePath)
	cfg.PromptsDir = envStr("PROMPTS_DIR", cfg.PromptsDir)
	cfg.Language = envStr("RESPONSE_LANGUAGE", cfg.Language)
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, ok := c.Providers[c.ActiveProvider]; !ok {
		return fmt.Errorf("unknown active provider %q", c.ActiveProvider)
	}
	for purpose, a := range c.Agents {
		if a.Provider == "" {
			continue
		}
		if _, ok := c.Providers[a.Provider]; !ok {
			return fmt.Errorf("agent %q uses unknown provider %q", purpose, a.Provider)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
