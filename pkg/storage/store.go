package storage

import (
	"context"
	"io"
)

// Store implementations know how to archive descriptors in a K/V model.
//
// Typically this is something file system-like. Implementations of this
// interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, source io.Reader, exclusive bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	Clear(context.Context) error
}
