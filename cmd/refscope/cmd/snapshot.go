package cmd

import (
	"context"
	"io/ioutil"

	"github.com/refscope/refscope/pkg/model"
	"github.com/refscope/refscope/pkg/storage"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

// snapshotCmd represents the snapshot related commands
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Commands to manage memory snapshots",
	Long: `Commands to manage memory snapshots.

A snapshot captures the live memory figures of the process after a garbage
collection pass settled the heap. Snapshots are archived in a store and
may be diffed to report the memory change between two points in time.`,
}

func downloadSnapshot(ctx context.Context, store storage.Store, id string) (*model.MemSnapshot, error) {
	rdr, err := store.Get(ctx, model.GetArchivePathToSnapshot(id))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rdr.Close() }()
	data, err := ioutil.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	var snap model.MemSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func init() {
	addStoreFlags(snapshotCmd)
	addFormatFlag(snapshotCmd)
	rootCmd.AddCommand(snapshotCmd)
}
