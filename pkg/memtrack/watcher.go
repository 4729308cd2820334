package memtrack

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/refscope/refscope/internal/rand"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const defaultPollInterval = 50 * time.Millisecond

// Watcher polls process memory in the background. It logs heap growth
// and, for every armed threshold, dumps heap and allocation profiles the
// first time the threshold is crossed.
type Watcher struct {
	l            *zap.Logger
	pollInterval time.Duration
	logEvery     time.Duration
	thresholds   []Threshold
	profileDir   string
	fs           afero.Fs
	_            struct{}
}

// NewWatcher creates a watcher, honoring options
func NewWatcher(opts ...WatcherOption) *Watcher {
	w := &Watcher{
		l:            zap.NewNop(),
		pollInterval: defaultPollInterval,
		fs:           afero.NewOsFs(),
		profileDir:   ".",
	}
	for _, apply := range opts {
		apply(w)
	}
	return w
}

// Start runs the watch loop in a goroutine until ctx is done
func (w *Watcher) Start(ctx context.Context) {
	go w.Watch(ctx)
}

// Watch polls memory figures until ctx is done
func (w *Watcher) Watch(ctx context.Context) {
	prefix := "mem_" + rand.LetterString(3)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	mstats := new(runtime.MemStats)
	var maxHeapThusFar uint64
	var sinceLog time.Duration

	for {
		runtime.ReadMemStats(mstats)
		if w.logEvery != 0 && sinceLog >= w.logEvery {
			w.l.Info("mempoll",
				zap.Uint64("MiB for heap (un-GC)", mstats.Alloc/1024/1024),
				zap.Uint64("MiB for heap (max ever)", mstats.HeapSys/1024/1024),
				zap.Int("num go routines", runtime.NumGoroutine()),
			)
			sinceLog = 0
		}
		if mstats.HeapSys > maxHeapThusFar {
			maxHeapThusFar = mstats.HeapSys
			w.l.Info("grew heap",
				zap.Uint64("MiB for heap (un-GC)", mstats.Alloc/1024/1024),
				zap.Uint64("MiB for heap (max ever)", mstats.HeapSys/1024/1024),
			)
		}
		for _, min := range w.thresholds {
			if err := w.maybeProfile(mstats, min, prefix); err != nil {
				w.l.Error("memory profiling error", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sinceLog += w.pollInterval
		}
	}
}

// maybeProfile dumps heap and allocs profiles when figures exceed min.
// Existing dumps for the same threshold are kept, so each threshold
// produces at most one pair of profiles per run.
func (w *Watcher) maybeProfile(mstats *runtime.MemStats, min Threshold, prefix string) error {
	if mstats.Alloc/1024/1024 < min.AllocMB || mstats.HeapSys/1024/1024 < min.HeapSysMB {
		return nil
	}
	if _, err := w.fs.Stat(w.profileDir); os.IsNotExist(err) {
		return nil
	}
	basePath := filepath.Join(w.profileDir, strings.Join([]string{
		prefix,
		strconv.FormatUint(min.AllocMB, 10),
		strconv.FormatUint(min.HeapSysMB, 10),
	}, "-"))
	if err := w.writeProfileIfAbsent(basePath+".mem.prof", "heap"); err != nil {
		return err
	}
	return w.writeProfileIfAbsent(basePath+".alloc.prof", "allocs")
}

func (w *Watcher) writeProfileIfAbsent(path string, name string) error {
	if _, err := w.fs.Stat(path); !os.IsNotExist(err) {
		return err
	}
	fprof, err := w.fs.Create(path)
	if err != nil {
		return err
	}
	defer fprof.Close()
	return pprof.Lookup(name).WriteTo(fprof, 0)
}
