package cmd

import (
	"bytes"
	"context"
	"time"

	"github.com/refscope/refscope/pkg/memtrack"
	"github.com/refscope/refscope/pkg/model"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

// snapshotCreateCmd captures and archives a memory snapshot
var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a memory snapshot",
	Long: `Capture the memory figures of the current process and archive them.

The heap is settled by a garbage collection pass before figures are read,
so two snapshots around an operation measure its retained allocations
rather than transient garbage.`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "snapshot create", err)
		}(time.Now())

		snap := memtrack.Snapshot(refscopeFlags.snapshot.Labels...)
		if err = model.ValidateSnapshot(snap); err != nil {
			wrapFatalln("validate snapshot", err)
			return
		}

		store, done, err := makeStore(refscopeFlags)
		if err != nil {
			wrapFatalln("open archive store", err)
			return
		}
		defer func() { _ = done() }()

		data, err := yaml.Marshal(snap)
		if err != nil {
			wrapFatalln("serialize snapshot", err)
			return
		}
		err = store.Put(context.Background(),
			model.GetArchivePathToSnapshot(snap.ID),
			bytes.NewReader(data), true)
		if err != nil {
			wrapFatalln("archive snapshot", err)
			return
		}
		infoLogger.Println(snap.String())
	},
}

func init() {
	addLabelsFlag(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotCreateCmd)
}
