package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

// configGen generates a config file from flags
var configGen = &cobra.Command{
	Use:   "create",
	Short: "Create a config",
	Long: `Create a config file with the parameters in use.

The configuration file is stored in $HOME/.refscope/refscope.yaml.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := CLIConfig{
			Store:    refscopeFlags.store.Backend,
			Path:     refscopeFlags.store.Path,
			LogLevel: refscopeFlags.root.logLevel,
			Metrics:  refscopeFlags.root.metrics,
		}
		data, err := yaml.Marshal(c)
		if err != nil {
			wrapFatalln("serialize config", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			wrapFatalln("could not get home directory for user", err)
			return
		}
		fs := configFS
		dir := filepath.Join(home, ".refscope")
		if err := fs.MkdirAll(dir, 0777); err != nil {
			wrapFatalln("create config directory "+dir, err)
			return
		}
		target := filepath.Join(dir, "refscope.yaml")
		if err := afero.WriteFile(fs, target, data, 0666); err != nil {
			wrapFatalln("write config "+target, err)
			return
		}
		infoLogger.Println("wrote", target)
	},
}

// patched over during test
var configFS = afero.NewOsFs()

func init() {
	addStoreFlags(configGen)
	configCmd.AddCommand(configGen)
}
