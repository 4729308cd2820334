package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/refscope/refscope/pkg/model"

	"github.com/spf13/cobra"
)

// snapshotListCmd lists archived snapshots
var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots",
	Long:  `List the memory snapshots present in the archive store, one line per snapshot.`,
	Example: `% refscope snapshot list
1eNYZserxbHMXQZCB0sTs4V2NpX: heap 2.4MiB (16204 objects), cumulated allocations 8.1MiB, 4 goroutines`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "snapshot list", err)
		}(time.Now())

		ctx := context.Background()
		store, done, err := makeStore(refscopeFlags)
		if err != nil {
			wrapFatalln("open archive store", err)
			return
		}
		defer func() { _ = done() }()

		keys, err := store.Keys(ctx)
		if err != nil {
			wrapFatalln("list archive", err)
			return
		}
		for _, key := range keys {
			if !strings.HasPrefix(key, model.GetArchivePathPrefixToSnapshots()) {
				continue
			}
			cs, perr := model.GetArchivePathComponents(key)
			if perr != nil {
				continue
			}
			snap, gerr := downloadSnapshot(ctx, store, cs.SnapshotID)
			if gerr != nil {
				err = gerr
				wrapFatalln("download snapshot "+cs.SnapshotID, gerr)
				return
			}
			infoLogger.Println(snap.String())
		}
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
}
