package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// snapshotDiffCmd reports the memory change between two snapshots
var snapshotDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff two snapshots",
	Long: `Report the memory change between two archived snapshots.

Heap figures may shrink between snapshots: deltas are signed.`,
	Example: `% refscope snapshot diff --from 1eNYZ... --to 1eNa2...
1eNYZ... -> 1eNa2...: heap 1.2MiB, allocated 3.4MiB, +1532 objects, 2 GC runs over 1.2s`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "snapshot diff", err)
		}(time.Now())

		ctx := context.Background()
		store, done, err := makeStore(refscopeFlags)
		if err != nil {
			wrapFatalln("open archive store", err)
			return
		}
		defer func() { _ = done() }()

		from, err := downloadSnapshot(ctx, store, refscopeFlags.snapshot.FromID)
		if err != nil {
			wrapFatalln("download snapshot "+refscopeFlags.snapshot.FromID, err)
			return
		}
		to, err := downloadSnapshot(ctx, store, refscopeFlags.snapshot.ToID)
		if err != nil {
			wrapFatalln("download snapshot "+refscopeFlags.snapshot.ToID, err)
			return
		}

		delta := from.Diff(*to)
		printReport(&delta, delta.String())
	},
}

func init() {
	requireFlags(snapshotDiffCmd,
		addSnapshotFromFlag(snapshotDiffCmd),
		addSnapshotToFlag(snapshotDiffCmd),
	)
	snapshotCmd.AddCommand(snapshotDiffCmd)
}
