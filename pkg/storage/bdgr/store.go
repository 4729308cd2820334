package bdgr

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/refscope/refscope/pkg/convert"
	"github.com/refscope/refscope/pkg/storage"
	"github.com/refscope/refscope/pkg/storage/status"

	"github.com/dgraph-io/badger"
)

func badgerRewriteError(err error) error {
	switch err {
	case badger.ErrKeyNotFound:
		return status.ErrNotFound
	case badger.ErrEmptyKey:
		return status.ErrInvalidResource
	default:
		return err
	}
}

// New creates a badger backed store rooted at baseDir. The store must be
// Initialize()d before use and Close()d when done.
func New(baseDir string) *BadgerStore {
	return &BadgerStore{
		baseDir: baseDir,
	}
}

var _ storage.Store = &BadgerStore{}

// BadgerStore archives descriptors in a badger database
type BadgerStore struct {
	baseDir string
	db      *badger.DB
	init    sync.Once
	close   sync.Once
}

// Initialize opens the underlying database, once
func (b *BadgerStore) Initialize() error {
	var err error
	b.init.Do(func() {
		opts := badger.DefaultOptions
		opts.Dir = b.baseDir
		opts.ValueDir = b.baseDir
		b.db, err = badger.Open(opts)
	})
	return err
}

// Close the underlying database, once
func (b *BadgerStore) Close() error {
	var err error
	b.close.Do(func() {
		if b.db != nil {
			err = b.db.Close()
			if err == nil {
				b.db = nil
			}
		}
	})
	return err
}

func (b *BadgerStore) String() string {
	return "badger@" + b.baseDir
}

func (b *BadgerStore) Has(ctx context.Context, key string) (bool, error) {
	if b.db == nil {
		return false, status.ErrClosed
	}
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(convert.UnsafeStringToBytes(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return badgerRewriteError(err)
		}
		found = true
		return nil
	})
	return found, err
}

func (b *BadgerStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if b.db == nil {
		return nil, status.ErrClosed
	}
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(convert.UnsafeStringToBytes(key))
		if err != nil {
			return badgerRewriteError(err)
		}
		v, err := item.Value()
		if err != nil {
			return badgerRewriteError(err)
		}
		data = append(data, v...) // item values are only valid within the txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (b *BadgerStore) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	if b.db == nil {
		return status.ErrClosed
	}
	data, err := ioutil.ReadAll(source)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		bk := convert.UnsafeStringToBytes(key)
		if exclusive {
			if _, err := txn.Get(bk); err == nil {
				return status.ErrExists
			} else if err != badger.ErrKeyNotFound {
				return badgerRewriteError(err)
			}
		}
		return badgerRewriteError(txn.Set(bk, data))
	})
}

func (b *BadgerStore) Delete(ctx context.Context, key string) error {
	if b.db == nil {
		return status.ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		bk := convert.UnsafeStringToBytes(key)
		if _, err := txn.Get(bk); err != nil {
			return badgerRewriteError(err)
		}
		return badgerRewriteError(txn.Delete(bk))
	})
}

func (b *BadgerStore) Keys(ctx context.Context) ([]string, error) {
	if b.db == nil {
		return nil, status.ErrClosed
	}
	var res []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			res = append(res, string(iter.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (b *BadgerStore) Clear(ctx context.Context) error {
	if b.db == nil {
		return status.ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Key() is only valid until the next iteration
			keys = append(keys, append([]byte(nil), iter.Item().Key()...))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
