package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "refscope",
	Short: "Refscope instruments the memory of Go values",
	Long: `Refscope answers three questions about values held in memory:
how big is this object really, counting shared substructure only once;
how much memory did this operation allocate; and how many bindings
reference this object right now.

It also replays binding scenarios against lexically scoped environments
to show where a name resolves and when a write triggers a copy.
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if refscopeFlags.root.cpuProf {
			f, err := os.Create("cpu.prof")
			if err != nil {
				log.Fatal(err)
			}
			_ = pprof.StartCPUProfile(f)
		}
		initMetrics()
	},
	// upstream api note: *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if refscopeFlags.root.cpuProf {
			pprof.StopCPUProfile()
		}
	},
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addLogLevelFlag(rootCmd)
	addCPUProfFlag(rootCmd)
	addMetricsFlags(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("store", defaultStoreBackend)
	viper.SetDefault("path", defaultArchivePath)
	if os.Getenv("REFSCOPE_CONFIG") != "" {
		// Use config file from the environment.
		viper.SetConfigFile(os.Getenv("REFSCOPE_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.refscope")
		viper.AddConfigPath("/etc/refscope")
		viper.SetConfigName("refscope")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setRefscopeParams(&refscopeFlags)
}
