// Package logging provides pre-configured component loggers for margin.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/annolab/margin/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	// Load the logging section from margin.yml, if present
	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	// Configure Level
	levelStr := "info"
	if os.Getenv("MARGIN_LOG_LEVEL") != "" {
		levelStr = os.Getenv("MARGIN_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configure Caller Reporting
	if os.Getenv("MARGIN_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	// Configure Formatter
	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{
			Config:  logCfg.Format,
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}

	// Configure Output Sinks
	writers := []io.Writer{os.Stderr}
	if logFile := openLogFile(component, logCfg); logFile != nil {
		writers = append(writers, logFile)
	}
	logger.SetOutput(io.MultiWriter(writers...))

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// openLogFile opens the file sink when enabled, defaulting to
// .margin/logs/<component>-<date>.log next to the project.
func openLogFile(component string, cfg Config) io.Writer {
	var path string
	if cfg.File.Enabled && cfg.File.Path != "" {
		path = cfg.File.Path
	} else if cfg.File.Enabled {
		cwd, err := os.Getwd()
		if err != nil {
			return nil
		}
		date := time.Now().Format("2006-01-02")
		path = filepath.Join(cwd, ".margin", "logs", fmt.Sprintf("%s-%s.log", component, date))
	} else {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return f
}
