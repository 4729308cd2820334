package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Store    string       `json:"store,omitempty" yaml:"store,omitempty"`       // Archive backend (localfs, badger)
	Path     string       `json:"path,omitempty" yaml:"path,omitempty"`         // Archive directory
	LogLevel string       `json:"loglevel,omitempty" yaml:"loglevel,omitempty"` // Default logging level
	Metrics  metricsFlags `json:"metrics,omitempty" yaml:"metrics,omitempty"`   // Metrics collection settings
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) setRefscopeParams(flags *flagsT) {
	if flags.store.Backend == defaultStoreBackend && c.Store != "" {
		flags.store.Backend = c.Store
	}
	if flags.store.Path == defaultArchivePath && c.Path != "" {
		flags.store.Path = c.Path
	}
	if c.LogLevel != "" && flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if flags.root.metrics.Enabled == nil {
		flags.root.metrics.Enabled = c.Metrics.Enabled
	}
	if flags.root.metrics.URL == "" {
		flags.root.metrics.URL = c.Metrics.URL
	}
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage a config",
	Long: `Commands to manage the refscope CLI config.

Configuration for refscope is the common set of flags that are needed for most commands and do not change across runs,
analogous to "git config ...".`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
