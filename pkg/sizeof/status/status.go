// Package status declares error constants returned by the sizeof package.
package status

import "github.com/refscope/refscope/pkg/errors"

var (
	// ErrNoRoots indicates that a scan was requested without any root value
	ErrNoRoots = errors.New("at least one root value is required")

	// ErrInvalidDepth indicates a negative depth limit
	ErrInvalidDepth = errors.New("depth limit must be positive")
)
