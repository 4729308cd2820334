package bdgr

import (
	"context"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/refscope/refscope/pkg/storage/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgerFixture(t *testing.T) *BadgerStore {
	t.Helper()
	dir, err := ioutil.TempDir("", "bdgr-test-")
	require.NoError(t, err)
	store := New(dir)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestBadgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := badgerFixture(t)

	key := "snapshots/abc/snapshot.yaml"
	has, err := store.Has(ctx, key)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Put(ctx, key, strings.NewReader("id: abc"), false))
	has, err = store.Has(ctx, key)
	require.NoError(t, err)
	assert.True(t, has)

	rdr, err := store.Get(ctx, key)
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "id: abc", string(b))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.Equal(t, status.ErrNotFound, err)
}

func TestBadgerExclusive(t *testing.T) {
	ctx := context.Background()
	store := badgerFixture(t)

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("one"), true))
	err := store.Put(ctx, "k", strings.NewReader("two"), true)
	assert.Equal(t, status.ErrExists, err)
}

func TestBadgerClear(t *testing.T) {
	ctx := context.Background()
	store := badgerFixture(t)

	require.NoError(t, store.Put(ctx, "a", strings.NewReader("1"), false))
	require.NoError(t, store.Put(ctx, "b", strings.NewReader("2"), false))
	require.NoError(t, store.Clear(ctx))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadgerClosed(t *testing.T) {
	store := badgerFixture(t)
	require.NoError(t, store.Close())

	_, err := store.Has(context.Background(), "k")
	assert.Equal(t, status.ErrClosed, err)
}
