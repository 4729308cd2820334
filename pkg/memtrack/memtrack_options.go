package memtrack

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Threshold triggers profile dumps when both live heap and heap reserved
// from the system exceed the given figures, in MiB. A zero threshold
// always triggers.
type Threshold struct {
	AllocMB   uint64
	HeapSysMB uint64
	_         struct{}
}

// WatcherOption to configure a Watcher
type WatcherOption func(*Watcher)

// Logger sets a logger for this watcher
func Logger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.l = l
		}
	}
}

// PollInterval sets how often memory figures are read
func PollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// LogEvery makes the watcher log current figures at this period, on top
// of the growth events it always logs. Zero disables periodic logging.
func LogEvery(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.logEvery = d
	}
}

// Thresholds arms profile dumps for the given thresholds
func Thresholds(ts ...Threshold) WatcherOption {
	return func(w *Watcher) {
		w.thresholds = ts
	}
}

// ProfileDir sets the directory receiving pprof dumps
func ProfileDir(dir string) WatcherOption {
	return func(w *Watcher) {
		w.profileDir = dir
	}
}

// FS overrides the filesystem receiving pprof dumps
func FS(fs afero.Fs) WatcherOption {
	return func(w *Watcher) {
		if fs != nil {
			w.fs = fs
		}
	}
}
