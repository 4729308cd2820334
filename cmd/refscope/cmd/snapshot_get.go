package cmd

import (
	"context"
	"time"

	"github.com/refscope/refscope/pkg/errors"
	"github.com/refscope/refscope/pkg/storage/status"

	"github.com/spf13/cobra"
)

// snapshotGetCmd retrieves one archived snapshot
var snapshotGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Get snapshot info",
	Long: `Performs a direct lookup of a snapshot.

Prints the corresponding snapshot descriptor if it exists,
exits with a non-zero status otherwise.`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "snapshot get", err)
		}(time.Now())

		store, done, err := makeStore(refscopeFlags)
		if err != nil {
			wrapFatalln("open archive store", err)
			return
		}
		defer func() { _ = done() }()

		snap, err := downloadSnapshot(context.Background(), store, refscopeFlags.snapshot.ID)
		if err != nil {
			if errors.Is(err, status.ErrNotFound) {
				wrapFatalWithCodef(2, "didn't find snapshot %q", refscopeFlags.snapshot.ID)
				return
			}
			wrapFatalln("download snapshot", err)
			return
		}
		printReport(snap, snap.String())
	},
}

func init() {
	requireFlags(snapshotGetCmd,
		addSnapshotFlag(snapshotGetCmd),
	)
	snapshotCmd.AddCommand(snapshotGetCmd)
}
