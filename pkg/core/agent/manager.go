// Package agent selects the text-generation provider, model and key used for
// each narrative purpose.
package agent

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/llm"
	"balance_insight/pkg/core/narrative"
	"balance_insight/pkg/core/prompt"
	"balance_insight/pkg/core/ratio"
)

// Narrative purposes.
const (
	PurposeSummary = "summary"
	PurposeChat    = "chat"
)

// Manager maps provider names to instances and resolves per-purpose
// overrides. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	active    string
	agents    map[string]config.AgentConfig
	settings  map[string]config.ProviderConfig
	providers map[string]llm.Provider

	markers  ratio.Markers
	language string
	prompts  *prompt.Registry
	logger   *slog.Logger
}

// NewManager builds the provider set from cfg. prompts may be nil.
func NewManager(cfg config.Config, prompts *prompt.Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	settings := make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		settings[name] = p
	}
	agents := make(map[string]config.AgentConfig, len(cfg.Agents))
	for name, a := range cfg.Agents {
		agents[name] = a
	}

	client := &http.Client{Timeout: llm.DefaultTimeout}
	m := &Manager{
		active:   cfg.ActiveProvider,
		agents:   agents,
		settings: settings,
		markers:  cfg.Markers.WithDefaults(),
		language: cfg.Language,
		prompts:  prompts,
		logger:   logger,
		providers: map[string]llm.Provider{
			config.ProviderGemini:       &llm.GeminiProvider{Model: settings[config.ProviderGemini].Model},
			config.ProviderGeminiLegacy: &llm.GeminiLegacyProvider{Model: settings[config.ProviderGeminiLegacy].Model},
			config.ProviderDeepSeek: &llm.DeepSeekProvider{
				BaseURL: settings[config.ProviderDeepSeek].BaseURL,
				Model:   settings[config.ProviderDeepSeek].Model,
				Client:  client,
			},
			config.ProviderQwen: &llm.QwenProvider{
				BaseURL: settings[config.ProviderQwen].BaseURL,
				Model:   settings[config.ProviderQwen].Model,
				Client:  client,
			},
		},
	}
	return m
}

// Register adds or replaces a provider. Tests use it to install fakes.
func (m *Manager) Register(name string, p llm.Provider, settings config.ProviderConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
	m.settings[name] = settings
}

// Resolve returns the provider name for purpose: the purpose override when
// set, otherwise the active provider.
func (m *Manager) Resolve(purpose string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveLocked(purpose)
}

func (m *Manager) resolveLocked(purpose string) string {
	if a, ok := m.agents[purpose]; ok && a.Provider != "" {
		if _, ok := m.providers[a.Provider]; ok {
			return a.Provider
		}
	}
	return m.active
}

// GetProvider returns the provider used for purpose.
func (m *Manager) GetProvider(purpose string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[m.resolveLocked(purpose)]
}

// GetProviderByName returns nil when name is not registered.
func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[name]
}

// HasKey reports whether the provider serving purpose has an API key.
func (m *Manager) HasKey(purpose string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[m.resolveLocked(purpose)].HasKey()
}

// Bridge builds a narrative bridge for purpose from the current settings.
func (m *Manager) Bridge(purpose string) *narrative.Bridge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := m.resolveLocked(purpose)
	settings := m.settings[name]
	model := settings.Model
	if a, ok := m.agents[purpose]; ok && a.Model != "" {
		model = a.Model
	}
	return &narrative.Bridge{
		Provider: m.providers[name],
		Model:    model,
		APIKey:   settings.APIKey,
		Prompts:  m.prompts,
		Markers:  m.markers,
		Language: m.language,
		Logger:   m.logger.With("purpose", purpose),
	}
}

// SetActiveProvider switches the global provider.
func (m *Manager) SetActiveProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.active = name
	m.logger.Info("active provider switched", "provider", name)
	return nil
}

// GetActiveProvider returns the global provider name.
func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Available lists registered provider names in sorted order.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Markers returns the row markers used for KPI lookups.
func (m *Manager) Markers() ratio.Markers { return m.markers }
