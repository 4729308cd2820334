package cmd

import (
	"time"

	"github.com/refscope/refscope/pkg/errors"
	"github.com/refscope/refscope/pkg/scope"
	scopestatus "github.com/refscope/refscope/pkg/scope/status"

	"github.com/spf13/cobra"
)

// scopeWhereCmd resolves a binding name through the environment chain
var scopeWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Locate a binding",
	Long: `Replay a scenario, then walk the environment chain from --env upward
and report the environment in which --name is bound.

Exits with a non-zero status when the name is not bound anywhere on the
chain.`,
	Example: `% refscope scope where --scenario testdata/scenario.yaml --env leaf --name x
x is bound in environment "global"`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "scope where", err)
		}(time.Now())

		scenario, err := loadScenario(refscopeFlags.scope.Scenario)
		if err != nil {
			wrapFatalln("load scenario", err)
			return
		}

		runner := scope.NewRunner(scope.RunnerLogger(mustGetLogger(refscopeFlags)))
		envs, err := runner.Build(scenario)
		if err != nil {
			wrapFatalln("replay scenario", err)
			return
		}

		start, ok := envs[refscopeFlags.scope.Env]
		if !ok {
			wrapFatalWithCodef(2, "scenario declares no environment %q", refscopeFlags.scope.Env)
			return
		}
		home, err := start.Where(refscopeFlags.scope.Name)
		if err != nil {
			if errors.Is(err, scopestatus.ErrNameNotFound) {
				wrapFatalWithCodef(2, "%s is not bound on the chain from %q", refscopeFlags.scope.Name, refscopeFlags.scope.Env)
				return
			}
			wrapFatalln("resolve binding", err)
			return
		}
		infoLogger.Printf("%s is bound in environment %q\n", refscopeFlags.scope.Name, home.Name())
	},
}

func init() {
	requireFlags(scopeWhereCmd,
		addScenarioFlag(scopeWhereCmd),
		addEnvFlag(scopeWhereCmd),
		addNameFlag(scopeWhereCmd),
	)

	scopeCmd.AddCommand(scopeWhereCmd)
}
