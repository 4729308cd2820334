package model

import (
	"fmt"
	"time"
	"unicode"

	units "github.com/docker/go-units"
)

// MemSnapshot captures the live memory figures of the process at one point
// in time, after a garbage collection pass settled the heap.
type MemSnapshot struct {
	ID          string    `json:"id" yaml:"id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	HeapAlloc   uint64    `json:"heapAlloc" yaml:"heapAlloc"`
	HeapSys     uint64    `json:"heapSys" yaml:"heapSys"`
	HeapObjects uint64    `json:"heapObjects" yaml:"heapObjects"`
	TotalAlloc  uint64    `json:"totalAlloc" yaml:"totalAlloc"`
	Mallocs     uint64    `json:"mallocs" yaml:"mallocs"`
	Frees       uint64    `json:"frees" yaml:"frees"`
	NumGC       uint32    `json:"numGC" yaml:"numGC"`
	Goroutines  int       `json:"goroutines" yaml:"goroutines"`
	Labels      []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	_           struct{}
}

func (s *MemSnapshot) String() string {
	return fmt.Sprintf("%s: heap %s (%d objects), cumulated allocations %s, %d goroutines",
		s.ID,
		units.BytesSize(float64(s.HeapAlloc)),
		s.HeapObjects,
		units.BytesSize(float64(s.TotalAlloc)),
		s.Goroutines)
}

// MemDelta is the difference between two snapshots. Heap figures may shrink:
// deltas are signed.
type MemDelta struct {
	From        string        `json:"from" yaml:"from"`
	To          string        `json:"to" yaml:"to"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
	HeapBytes   int64         `json:"heapBytes" yaml:"heapBytes"`
	TotalBytes  int64         `json:"totalBytes" yaml:"totalBytes"`
	HeapObjects int64         `json:"heapObjects" yaml:"heapObjects"`
	GCRuns      uint32        `json:"gcRuns" yaml:"gcRuns"`
	_           struct{}
}

// Diff computes the delta from snapshot s to a later snapshot o
func (s *MemSnapshot) Diff(o MemSnapshot) MemDelta {
	return MemDelta{
		From:        s.ID,
		To:          o.ID,
		Elapsed:     o.Timestamp.Sub(s.Timestamp),
		HeapBytes:   int64(o.HeapAlloc) - int64(s.HeapAlloc),
		TotalBytes:  int64(o.TotalAlloc) - int64(s.TotalAlloc),
		HeapObjects: int64(o.HeapObjects) - int64(s.HeapObjects),
		GCRuns:      o.NumGC - s.NumGC,
	}
}

func (d *MemDelta) String() string {
	return fmt.Sprintf("%s -> %s: heap %s, allocated %s, %+d objects, %d GC runs over %v",
		d.From, d.To,
		SignedBytesSize(d.HeapBytes),
		SignedBytesSize(d.TotalBytes),
		d.HeapObjects,
		d.GCRuns,
		d.Elapsed)
}

// SignedBytesSize renders a possibly negative byte count in human readable form
func SignedBytesSize(n int64) string {
	if n < 0 {
		return "-" + units.BytesSize(float64(-n))
	}
	return units.BytesSize(float64(n))
}

// ValidateSnapshot checks a snapshot descriptor before it is archived
func ValidateSnapshot(s MemSnapshot) error {
	if s.ID == "" {
		return fmt.Errorf("empty field: snapshot id is empty")
	}
	for _, c := range s.ID {
		if !unicode.IsDigit(c) && !unicode.IsLetter(c) {
			return fmt.Errorf("invalid id: snapshot id:%s contains unsupported character %q",
				s.ID,
				string(c))
		}
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("empty field: snapshot timestamp is zero")
	}
	return nil
}
