package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "taskosaur-ai",
	Short: "Natural-language command interpreter for Taskosaur",
	Long: `taskosaur-ai turns chat messages into structured Taskosaur commands.

It tracks the workspace and project you are talking about, asks a configured
LLM provider for a reply, and validates the command the reply proposes before
handing it to the client.

Running 'taskosaur-ai' without arguments starts interactive chat mode.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion records build information for the version command.
func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	// Assigned here because runChat reaches loadConfig, which reads rootCmd.
	rootCmd.RunE = runChat

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .taskosaur/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
}

// loadConfig reads, merges and validates configuration. Only flags the user
// set override file and environment values.
func loadConfig() (*config.Config, *config.Loader, error) {
	v := viper.New()
	flags := rootCmd.PersistentFlags()
	if flags.Changed("log-level") {
		v.Set("log.level", logLevel)
	}
	if flags.Changed("log-format") {
		v.Set("log.format", logFormat)
	}

	loader := config.NewLoaderWithViper(v)
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, loader, nil
}
