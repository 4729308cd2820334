package memtrack

import (
	"runtime"
	"time"

	"github.com/refscope/refscope/pkg/model"

	"github.com/segmentio/ksuid"
)

// Snapshot captures the memory figures of the process, after forcing a
// garbage collection pass so the heap is settled.
func Snapshot(labels ...string) model.MemSnapshot {
	runtime.GC()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return model.MemSnapshot{
		ID:          ksuid.New().String(),
		Timestamp:   time.Now(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.HeapSys,
		HeapObjects: ms.HeapObjects,
		TotalAlloc:  ms.TotalAlloc,
		Mallocs:     ms.Mallocs,
		Frees:       ms.Frees,
		NumGC:       ms.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		Labels:      labels,
	}
}

// Change brackets op with two snapshots and reports the memory it
// retained or released. The error of op is passed through and leaves the
// delta empty.
func Change(op func() error) (model.MemDelta, error) {
	before := Snapshot()
	if err := op(); err != nil {
		return model.MemDelta{}, err
	}
	after := Snapshot()
	return before.Diff(after), nil
}
