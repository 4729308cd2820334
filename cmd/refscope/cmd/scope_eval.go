package cmd

import (
	"time"

	"github.com/refscope/refscope/pkg/scope"
	"github.com/refscope/refscope/pkg/sizeof"

	"github.com/spf13/cobra"
)

// scopeEvalCmd replays a scenario and dumps the resulting scope graph
var scopeEvalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Replay a scenario",
	Long: `Replay a scenario and dump the resulting environments.

Every environment is listed with its bindings and their reference count:
1 when a single binding holds the object, 2 when it is shared. With
--with-sizes bindings are annotated with their retained size.`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "scope eval", err)
		}(time.Now())

		scenario, err := loadScenario(refscopeFlags.scope.Scenario)
		if err != nil {
			wrapFatalln("load scenario", err)
			return
		}

		opts := []scope.RunnerOption{
			scope.RunnerLogger(mustGetLogger(refscopeFlags)),
		}
		if refscopeFlags.scope.WithSizes {
			opts = append(opts, scope.RunnerSizer(sizeof.New()))
		}

		dump, err := scope.NewRunner(opts...).Run(scenario)
		if err != nil {
			wrapFatalln("replay scenario", err)
			return
		}

		data, err := marshalOutput(refscopeFlags, dump)
		if err != nil {
			wrapFatalln("render scope graph", err)
			return
		}
		logStdOut("%s", string(data))
	},
}

func init() {
	requireFlags(scopeEvalCmd,
		addScenarioFlag(scopeEvalCmd),
	)
	addWithSizesFlag(scopeEvalCmd)

	scopeCmd.AddCommand(scopeEvalCmd)
}
