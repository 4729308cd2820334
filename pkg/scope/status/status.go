// Package status declares error constants returned by the scope package.
package status

import "github.com/refscope/refscope/pkg/errors"

var (
	// ErrNameNotFound indicates that a name resolves to no binding up to the root environment
	ErrNameNotFound = errors.New("name not bound in this environment or its parents")

	// ErrEmptyName indicates a binding operation on an empty name
	ErrEmptyName = errors.New("binding name is empty")

	// ErrNilMutator indicates a Modify call without a mutation function
	ErrNilMutator = errors.New("mutation function is required")
)
