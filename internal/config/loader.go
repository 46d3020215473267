package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables applied over the file.
const (
	EnvAPIURL   = "DOCCHAT_API_URL"
	EnvProvider = "DOCCHAT_PROVIDER"
)

var (
	testPathMu sync.RWMutex
	testPath   string
)

// ConfigPath returns the config file location.
func ConfigPath() string {
	testPathMu.RLock()
	p := testPath
	testPathMu.RUnlock()
	if p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "docchat", "config.json")
	}
	return filepath.Join(home, ".config", "docchat", "config.json")
}

// SetTestConfigPath redirects ConfigPath for tests.
func SetTestConfigPath(path string) {
	testPathMu.Lock()
	testPath = path
	testPathMu.Unlock()
}

// ResetTestConfigPath undoes SetTestConfigPath.
func ResetTestConfigPath() { SetTestConfigPath("") }

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables already set win. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// Load reads ConfigPath().
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// loadConfig mirrors saveConfig so durations may be written as strings.
type loadConfig struct {
	API struct {
		URL     string          `json:"url"`
		Timeout json.RawMessage `json:"timeout"`
	} `json:"api"`
	Chat     *ChatConfig     `json:"chat"`
	Upload   *UploadConfig   `json:"upload"`
	Keymap   *KeymapConfig   `json:"keymap"`
	UI       *UIConfig       `json:"ui"`
	Log      *LogConfig      `json:"log"`
	Features *FeaturesConfig `json:"features"`
}

// LoadFrom reads path over the defaults. A missing file yields the
// defaults. Environment overrides are applied last.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Log.Path = ExpandPath(cfg.Log.Path)
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	lc := loadConfig{
		Chat:     &cfg.Chat,
		Upload:   &cfg.Upload,
		Keymap:   &cfg.Keymap,
		UI:       &cfg.UI,
		Log:      &cfg.Log,
		Features: &cfg.Features,
	}
	if err := json.Unmarshal(data, &lc); err != nil {
		return err
	}
	if lc.API.URL != "" {
		cfg.API.URL = lc.API.URL
	}
	if len(lc.API.Timeout) > 0 {
		d, err := parseDuration(lc.API.Timeout)
		if err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
		cfg.API.Timeout = d
	}
	return nil
}

// parseDuration accepts "30s" style strings or integer nanoseconds.
func parseDuration(raw json.RawMessage) (time.Duration, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return time.ParseDuration(s)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return time.Duration(n), nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.API.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		cfg.Chat.Provider = v
	}
	slog.Debug("config env applied", "api", cfg.API.URL, "provider", cfg.Chat.Provider)
}
