package cmd

import (
	"github.com/refscope/refscope/pkg/model"

	"github.com/spf13/cobra"
)

// scopeCmd represents the scope related commands
var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Commands to replay binding scenarios",
	Long: `Commands to replay binding scenarios against lexically scoped environments.

A scenario declares a tree of environments and a sequence of binding
operations: define, alias, assign and modify. Replaying it shows where a
name resolves, how many bindings reference an object and when a write
triggers a copy.`,
}

func loadScenario(pth string) (model.Scenario, error) {
	var s model.Scenario
	err := decodeValueFile(pth, &s)
	return s, err
}

func init() {
	addFormatFlag(scopeCmd)
	rootCmd.AddCommand(scopeCmd)
}
