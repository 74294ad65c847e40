// Package cli holds shared plumbing for margin commands: standard flags,
// logger wiring, styled output and error presentation.
package cli

import (
	"os"
	"strings"

	"github.com/annolab/margin/config"
	"github.com/annolab/margin/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandOptions holds common options for margin commands.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard margin flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to margin.yml config file")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		ApplyEnvOverrides(cmd.Flags())
	}

	return cmd
}

// ApplyEnvOverrides fills unset flags from MARGIN_<FLAG> environment
// variables, so e.g. MARGIN_CONFIG=/etc/margin.yml acts like --config.
// Explicit flags always win.
func ApplyEnvOverrides(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		envName := "MARGIN_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if value, ok := os.LookupEnv(envName); ok {
			_ = flags.Set(f.Name, value)
		}
	})
}

// GetBoolFlag reads a bool flag, falling back to the command's own
// persistent set. cobra only merges persistent flags into Flags() while
// executing, so helpers called outside Execute would otherwise miss them.
func GetBoolFlag(cmd *cobra.Command, name string) bool {
	if v, err := cmd.Flags().GetBool(name); err == nil {
		return v
	}
	v, _ := cmd.PersistentFlags().GetBool(name)
	return v
}

// GetStringFlag reads a string flag with the same persistent-set fallback.
func GetStringFlag(cmd *cobra.Command, name string) string {
	if v, err := cmd.Flags().GetString(name); err == nil {
		return v
	}
	v, _ := cmd.PersistentFlags().GetString(name)
	return v
}

// GetLogger creates a logger based on command flags.
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	entry := logging.NewLogger("margin-cli")
	logger := entry.Logger

	if GetBoolFlag(cmd, "verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	if GetBoolFlag(cmd, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// GetOptions extracts common options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	return CommandOptions{
		ConfigFile: GetStringFlag(cmd, "config"),
		Verbose:    GetBoolFlag(cmd, "verbose"),
		JSONOutput: GetBoolFlag(cmd, "json"),
	}
}

// LoadConfig resolves configuration for a command: the --config flag wins,
// otherwise the nearest margin.yml is used, otherwise defaults.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	if configFile := GetStringFlag(cmd, "config"); configFile != "" {
		return config.Load(configFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadFrom(cwd)
}
