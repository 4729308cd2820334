package model

import (
	"fmt"
	"time"

	units "github.com/docker/go-units"
)

// SizeReport is the outcome of a deep size scan over one or several root values.
//
// TotalBytes is the retained size: every block of memory reachable from the
// roots is counted exactly once. SharedBytes counts the bytes that were
// reached more than once and elided from the total.
type SizeReport struct {
	Fingerprint string           `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	TotalBytes  int64            `json:"totalBytes" yaml:"totalBytes"`
	SharedBytes int64            `json:"sharedBytes" yaml:"sharedBytes"`
	Nodes       int64            `json:"nodes" yaml:"nodes"`
	MaxDepth    int              `json:"maxDepth" yaml:"maxDepth"`
	Truncated   bool             `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	ByKind      map[string]int64 `json:"byKind,omitempty" yaml:"byKind,omitempty"`
	Timestamp   time.Time        `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_           struct{}
}

// HumanSize yields the total size in human readable form (e.g. "1.2MiB")
func (r *SizeReport) HumanSize() string {
	return units.BytesSize(float64(r.TotalBytes))
}

func (r *SizeReport) String() string {
	s := fmt.Sprintf("%s (%d bytes) in %d nodes, %s shared",
		r.HumanSize(), r.TotalBytes, r.Nodes, units.BytesSize(float64(r.SharedBytes)))
	if r.Truncated {
		s += " [truncated]"
	}
	return s
}

// Comparison reports the respective and combined sizes of two values.
//
// SharedBytes is derived: size(a) + size(b) - size(a,b).
type Comparison struct {
	SizeA       int64     `json:"sizeA" yaml:"sizeA"`
	SizeB       int64     `json:"sizeB" yaml:"sizeB"`
	Together    int64     `json:"together" yaml:"together"`
	SharedBytes int64     `json:"sharedBytes" yaml:"sharedBytes"`
	Timestamp   time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_           struct{}
}

func (c *Comparison) String() string {
	return fmt.Sprintf("a: %s, b: %s, together: %s, shared: %s",
		units.BytesSize(float64(c.SizeA)),
		units.BytesSize(float64(c.SizeB)),
		units.BytesSize(float64(c.Together)),
		units.BytesSize(float64(c.SharedBytes)))
}

// ValidateSizeReport checks a size report for internal consistency
func ValidateSizeReport(r SizeReport) error {
	if r.TotalBytes < 0 {
		return fmt.Errorf("negative total: %d", r.TotalBytes)
	}
	if r.SharedBytes < 0 {
		return fmt.Errorf("negative shared bytes: %d", r.SharedBytes)
	}
	if r.Nodes < 1 {
		return fmt.Errorf("a report accounts for at least the root node, got %d", r.Nodes)
	}
	return nil
}
