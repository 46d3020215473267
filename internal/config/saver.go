package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	API      saveAPIConfig  `json:"api"`
	Chat     ChatConfig     `json:"chat"`
	Upload   UploadConfig   `json:"upload"`
	Keymap   KeymapConfig   `json:"keymap"`
	UI       UIConfig       `json:"ui"`
	Log      LogConfig      `json:"log"`
	Features FeaturesConfig `json:"features,omitempty"`
}

type saveAPIConfig struct {
	URL     string `json:"url,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		API: saveAPIConfig{
			URL:     cfg.API.URL,
			Timeout: cfg.API.Timeout.String(),
		},
		Chat:     cfg.Chat,
		Upload:   cfg.Upload,
		Keymap:   cfg.Keymap,
		UI:       cfg.UI,
		Log:      cfg.Log,
		Features: cfg.Features,
	}
}

// Save writes the config to ConfigPath().
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sc := toSaveConfig(cfg)
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	return Save(cfg)
}
