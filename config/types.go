// Package config loads and represents margin.yml configuration.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Backend kinds accepted by settings.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the root of a margin.yml file.
type Config struct {
	Version  string         `yaml:"version"`
	Settings SettingsConfig `yaml:"settings"`
	GitHub   GitHubConfig   `yaml:"github,omitempty"`
	Bridge   BridgeConfig   `yaml:"bridge,omitempty"`

	// Extensions captures all other top-level keys (e.g. "logging") so
	// subsystems can decode their own sections.
	Extensions map[string]interface{} `yaml:",inline"`
}

// SettingsConfig holds the core engine settings.
type SettingsConfig struct {
	// StorePath is the key the thread store document is persisted under.
	StorePath string `yaml:"store_path"`
	// Backend selects the storage backend: "file" or "sqlite".
	Backend string `yaml:"backend"`
	// DatabasePath locates the sqlite database when backend is "sqlite".
	DatabasePath string `yaml:"database_path"`
	// PollIntervalMs is the panel refresh interval while visible.
	PollIntervalMs int `yaml:"poll_interval_ms"`
	// WatchDebounceMs debounces store-file change events.
	WatchDebounceMs int `yaml:"watch_debounce_ms"`
	// WatchStore enables the fsnotify watcher on the backing document.
	WatchStore *bool `yaml:"watch_store,omitempty"`
	// DefaultSort is the initial thread sort key.
	DefaultSort string `yaml:"default_sort"`
}

// GitHubConfig configures the user-lookup collaborator.
type GitHubConfig struct {
	// API overrides the GitHub API base URL.
	API string `yaml:"api"`
	// Token is sent as an Authorization header when set. Supports ${VAR}.
	Token string `yaml:"token"`
}

// BridgeConfig configures the local bridge daemon.
type BridgeConfig struct {
	// Socket is the unix socket path the bridge listens on.
	Socket string `yaml:"socket"`
	// PidFile guards against concurrent bridge instances.
	PidFile string `yaml:"pid_file"`
}

// PollInterval returns the configured poll interval as a duration.
func (s SettingsConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// WatchDebounce returns the configured watch debounce as a duration.
func (s SettingsConfig) WatchDebounce() time.Duration {
	return time.Duration(s.WatchDebounceMs) * time.Millisecond
}

// WatchEnabled reports whether the store watcher should run.
func (s SettingsConfig) WatchEnabled() bool {
	if s.WatchStore == nil {
		return s.Backend == BackendFile
	}
	return *s.WatchStore
}

// UnmarshalExtension decodes a specific extension's configuration from the
// inline Extensions map into a strongly-typed target struct.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
