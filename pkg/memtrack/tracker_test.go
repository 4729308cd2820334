package memtrack

import (
	"context"
	"testing"
	"time"

	"github.com/refscope/refscope/pkg/errors"
	"github.com/refscope/refscope/pkg/model"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	s := Snapshot("unit-test")
	require.NoError(t, model.ValidateSnapshot(s))
	assert.NotEmpty(t, s.ID)
	assert.True(t, s.HeapAlloc > 0)
	assert.True(t, s.TotalAlloc >= s.HeapAlloc)
	assert.True(t, s.Goroutines >= 1)
	assert.Equal(t, []string{"unit-test"}, s.Labels)

	s2 := Snapshot()
	assert.NotEqual(t, s.ID, s2.ID)
}

func TestChangeSeesAllocations(t *testing.T) {
	var sink []byte
	const chunk = 8 * 1024 * 1024

	d, err := Change(func() error {
		sink = make([]byte, chunk)
		for i := range sink {
			sink[i] = byte(i)
		}
		return nil
	})
	require.NoError(t, err)
	// cumulated allocations are monotonic, so at least the chunk shows up
	assert.True(t, d.TotalBytes >= chunk, "got %d", d.TotalBytes)
	assert.NotEmpty(t, d.From)
	assert.NotEmpty(t, d.To)
	assert.True(t, d.Elapsed > 0)
	_ = sink
}

func TestChangeMayBeNegative(t *testing.T) {
	sink := make([]byte, 8*1024*1024)
	for i := range sink {
		sink[i] = byte(i)
	}

	d, err := Change(func() error {
		sink = nil
		return nil
	})
	require.NoError(t, err)
	assert.True(t, d.HeapBytes < 0, "got %d", d.HeapBytes)
}

func TestChangePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Change(func() error {
		return boom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestWatcherProfiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("profiles", 0700))

	w := NewWatcher(
		FS(fs),
		ProfileDir("profiles"),
		PollInterval(5*time.Millisecond),
		Thresholds(Threshold{}), // always triggers
	)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()

	infos, err := afero.ReadDir(fs, "profiles")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, fi := range infos {
		assert.True(t, fi.Size() > 0)
	}
}
