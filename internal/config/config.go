package config

import (
	"strings"
	"time"

	"github.com/wilbur182/docchat/internal/api"
)

// Defaults applied when the file omits a value or holds a bad one.
const (
	DefaultAPIURL            = "http://localhost:5000"
	DefaultProvider          = "openai"
	DefaultUploadConcurrency = 3
	DefaultLogMaxSizeMB      = 5
	DefaultLogMaxBackups     = 3
)

// Config is the root configuration structure.
type Config struct {
	API      APIConfig      `json:"api"`
	Chat     ChatConfig     `json:"chat"`
	Upload   UploadConfig   `json:"upload"`
	Keymap   KeymapConfig   `json:"keymap"`
	UI       UIConfig       `json:"ui"`
	Log      LogConfig      `json:"log"`
	Features FeaturesConfig `json:"features"`
}

// FeaturesConfig holds feature flag settings.
type FeaturesConfig struct {
	Flags map[string]bool `json:"flags"`
}

// APIConfig locates the backend.
type APIConfig struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
}

// ChatConfig seeds the chat controls on startup.
type ChatConfig struct {
	Provider  string `json:"provider"`
	WebSearch bool   `json:"webSearch"`
}

// UploadConfig tunes the upload pipeline.
type UploadConfig struct {
	Concurrency int `json:"concurrency"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool        `json:"showFooter"`
	ShowClock  bool        `json:"showClock"`
	Theme      ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name string `json:"name"`
}

// LogConfig configures the rotating log file. An empty Path disables logging.
type LogConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: api.DefaultTimeout,
		},
		Chat: ChatConfig{
			Provider: DefaultProvider,
		},
		Upload: UploadConfig{
			Concurrency: DefaultUploadConcurrency,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter: true,
			ShowClock:  true,
			Theme: ThemeConfig{
				Name: "default",
			},
		},
		Log: LogConfig{
			Path:       "~/.config/docchat/docchat.log",
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
		Features: FeaturesConfig{
			Flags: make(map[string]bool),
		},
	}
}

// Validate checks the configuration for errors, replacing bad values with defaults.
func (c *Config) Validate() error {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = api.DefaultTimeout
	}
	if c.Chat.Provider == "" {
		c.Chat.Provider = DefaultProvider
	}
	if c.Upload.Concurrency <= 0 {
		c.Upload.Concurrency = DefaultUploadConcurrency
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}
	if c.Keymap.Overrides == nil {
		c.Keymap.Overrides = make(map[string]string)
	}
	if c.Features.Flags == nil {
		c.Features.Flags = make(map[string]bool)
	}
	return nil
}
