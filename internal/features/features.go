package features

import (
	"errors"
	"sync"

	"github.com/wilbur182/docchat/internal/config"
)

// ErrNotInitialized is returned when the feature manager is not initialized.
var ErrNotInitialized = errors.New("feature manager not initialized")

// Feature represents a known feature flag with its default value.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

var (
	// OfficePreview shows extracted text for docx and pptx documents.
	OfficePreview = Feature{
		Name:        "office_preview",
		Default:     true,
		Description: "Show extracted text for Word and PowerPoint documents",
	}

	// WebSearchDefault starts the chat with web search switched on.
	WebSearchDefault = Feature{
		Name:        "web_search_default",
		Default:     false,
		Description: "Enable web search for new chats",
	}
)

var allFeatures = []Feature{
	OfficePreview,
	WebSearchDefault,
}

var defaultValues = buildDefaultMap()

func buildDefaultMap() map[string]bool {
	m := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		m[f.Name] = f.Default
	}
	return m
}

// IsKnownFeature returns true if the feature name is registered.
func IsKnownFeature(name string) bool {
	_, ok := defaultValues[name]
	return ok
}

// Manager handles feature flag state.
type Manager struct {
	mu        sync.RWMutex
	flags     map[string]bool // from config
	overrides map[string]bool // CLI overrides take precedence
}

var globalManager *Manager

// Init initializes the manager from cfg. Call once at startup.
func Init(cfg *config.Config) {
	globalManager = &Manager{
		flags:     copyFlags(cfg),
		overrides: make(map[string]bool),
	}
}

// Reload replaces the config-sourced flags, keeping CLI overrides.
func Reload(cfg *config.Config) {
	if globalManager == nil {
		Init(cfg)
		return
	}
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.flags = copyFlags(cfg)
}

func copyFlags(cfg *config.Config) map[string]bool {
	m := make(map[string]bool)
	if cfg == nil {
		return m
	}
	for k, v := range cfg.Features.Flags {
		m[k] = v
	}
	return m
}

// SetOverride sets a CLI override for a feature flag.
func SetOverride(name string, enabled bool) {
	if globalManager == nil {
		return
	}
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.overrides[name] = enabled
}

// IsEnabled checks if a feature is enabled.
// Priority: CLI override > config > default.
func IsEnabled(name string) bool {
	if globalManager == nil {
		return defaultValues[name]
	}
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	return globalManager.enabledLocked(name)
}

func (m *Manager) enabledLocked(name string) bool {
	if enabled, ok := m.overrides[name]; ok {
		return enabled
	}
	if enabled, ok := m.flags[name]; ok {
		return enabled
	}
	return defaultValues[name] // unknown features are off
}

// List returns all known features with their current enabled state.
func List() map[string]bool {
	result := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		result[f.Name] = IsEnabled(f.Name)
	}
	return result
}

// ListAll returns all known features with metadata.
func ListAll() []Feature {
	result := make([]Feature, len(allFeatures))
	copy(result, allFeatures)
	return result
}

// SetEnabled updates a feature flag in the config file and in memory.
func SetEnabled(name string, enabled bool) error {
	if globalManager == nil {
		return ErrNotInitialized
	}

	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()

	// Reload from disk to avoid overwriting changes made since startup.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Features.Flags[name] = enabled
	globalManager.flags[name] = enabled

	return config.Save(cfg)
}
