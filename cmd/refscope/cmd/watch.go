package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/refscope/refscope/pkg/memtrack"

	"github.com/spf13/cobra"
)

// watchCmd polls process memory until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch process memory",
	Long: `Poll the process memory figures until interrupted.

Heap growth is logged as it happens. When a threshold is armed, heap and
allocation profiles are dumped the first time it is crossed, ready for
inspection with "go tool pprof".`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "watch", err)
		}(time.Now())

		opts := []memtrack.WatcherOption{
			memtrack.Logger(mustGetLogger(refscopeFlags)),
			memtrack.PollInterval(refscopeFlags.watch.Interval),
			memtrack.LogEvery(refscopeFlags.watch.LogEvery),
			memtrack.ProfileDir(refscopeFlags.watch.ProfileDir),
		}
		if refscopeFlags.watch.AllocMB > 0 || refscopeFlags.watch.HeapSysMB > 0 {
			opts = append(opts, memtrack.Thresholds(memtrack.Threshold{
				AllocMB:   refscopeFlags.watch.AllocMB,
				HeapSysMB: refscopeFlags.watch.HeapSysMB,
			}))
		}
		watcher := memtrack.NewWatcher(opts...)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-interrupt
			cancel()
		}()

		watcher.Watch(ctx)
	},
}

func init() {
	addWatchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
