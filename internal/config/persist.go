package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = "zipexplorer"
	configFileName = "config.json"
)

func DefaultConfig() Config {
	return Config{
		Theme:       ThemeDark,
		Decimals:    DefaultDecimals,
		LogLevel:    "info",
		LogFormat:   "console",
		KeyBindings: map[string]string{},
	}
}

func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		resolved, err := ConfigPath()
		if err != nil {
			return config, err
		}
		path = resolved
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return config, err
	}
	return mergeConfig(config, stored), nil
}

func SaveConfig(path string, config Config) error {
	if path == "" {
		resolved, err := ConfigPath()
		if err != nil {
			return err
		}
		path = resolved
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeConfig(base Config, stored fileConfig) Config {
	merged := base
	if stored.Theme != nil {
		merged.Theme = NormalizeTheme(*stored.Theme, base.Theme)
	}
	if stored.Decimals != nil {
		merged.Decimals = ClampDecimals(*stored.Decimals)
	}
	if stored.StoragePath != nil {
		merged.StoragePath = *stored.StoragePath
	}
	if stored.LogLevel != nil {
		merged.LogLevel = *stored.LogLevel
	}
	if stored.LogFile != nil {
		merged.LogFile = *stored.LogFile
	}
	if stored.LogFormat != nil {
		merged.LogFormat = *stored.LogFormat
	}
	if stored.MetricsAddr != nil {
		merged.MetricsAddr = *stored.MetricsAddr
	}
	if stored.KeyBindings != nil {
		merged.KeyBindings = stored.KeyBindings
	}
	if stored.LastDirectory != nil {
		merged.LastDirectory = *stored.LastDirectory
	}
	return merged
}

func NormalizeTheme(value, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ThemeDark:
		return ThemeDark
	case ThemeLight:
		return ThemeLight
	default:
		return fallback
	}
}

func ClampDecimals(value int) int {
	if value < 0 {
		return 0
	}
	if value > MaxDecimals {
		return MaxDecimals
	}
	return value
}
