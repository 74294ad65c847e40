package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/annolab/margin/errors"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and parses a margin configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	return LoadFromBytes(data)
}

// LoadDefault finds and loads the configuration starting from the current
// working directory. A missing config file yields the built-in defaults.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom loads configuration starting the walk-up search from startDir.
func LoadFrom(startDir string) (*Config, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		if errors.Is(err, errors.ErrCodeConfigNotFound) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	return Load(path)
}

// LoadFromBytes parses configuration from raw YAML content
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config")
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigFile locates margin.yml by walking up from startDir, falling
// back to the XDG config directory.
func FindConfigFile(startDir string) (string, error) {
	configNames := []string{
		"margin.yml",
		"margin.yaml",
		".margin.yml",
		".margin.yaml",
	}

	// 1. Search from the start directory up to the filesystem root
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// 2. Check the XDG config directory
	if xdgPath := getXDGConfigPath(); xdgPath != "" {
		if info, err := os.Stat(xdgPath); err == nil && !info.IsDir() {
			return xdgPath, nil
		}
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

func getXDGConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "margin", "margin.yml")
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Settings.StorePath == "" {
		cfg.Settings.StorePath = filepath.Join(".margin", "comments.json")
	}
	if cfg.Settings.Backend == "" {
		cfg.Settings.Backend = BackendFile
	}
	if cfg.Settings.DatabasePath == "" {
		cfg.Settings.DatabasePath = filepath.Join(".margin", "margin.db")
	}
	if cfg.Settings.PollIntervalMs <= 0 {
		cfg.Settings.PollIntervalMs = 1000
	}
	if cfg.Settings.WatchDebounceMs <= 0 {
		cfg.Settings.WatchDebounceMs = 500
	}
	if cfg.Settings.DefaultSort == "" {
		cfg.Settings.DefaultSort = "latest"
	}
	if cfg.GitHub.API == "" {
		cfg.GitHub.API = "https://api.github.com"
	}
	if cfg.Bridge.Socket == "" {
		cfg.Bridge.Socket = filepath.Join(".margin", "bridge.sock")
	}
	if cfg.Bridge.PidFile == "" {
		cfg.Bridge.PidFile = filepath.Join(".margin", "bridge.pid")
	}
}

func validate(cfg *Config) error {
	switch cfg.Settings.Backend {
	case BackendFile, BackendSQLite:
	default:
		return errors.ConfigInvalid("settings.backend must be \"file\" or \"sqlite\"").
			WithDetail("backend", cfg.Settings.Backend)
	}

	switch cfg.Settings.DefaultSort {
	case "latest", "date", "mostReplies":
	default:
		return errors.ConfigInvalid("settings.default_sort must be one of latest, date, mostReplies").
			WithDetail("default_sort", cfg.Settings.DefaultSort)
	}

	return nil
}
