package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func snapshotFixture(id string, heap uint64, at time.Time) MemSnapshot {
	return MemSnapshot{
		ID:          id,
		Timestamp:   at,
		HeapAlloc:   heap,
		HeapSys:     heap * 2,
		HeapObjects: 100,
		TotalAlloc:  heap * 4,
		Mallocs:     200,
		Frees:       100,
		NumGC:       3,
		Goroutines:  5,
	}
}

func TestSnapshotDiff(t *testing.T) {
	t0 := time.Date(2019, 10, 30, 10, 0, 0, 0, time.UTC)
	before := snapshotFixture("aaa", 1024, t0)
	after := snapshotFixture("bbb", 512, t0.Add(time.Second))
	after.HeapObjects = 50
	after.NumGC = 5

	d := before.Diff(after)
	assert.Equal(t, "aaa", d.From)
	assert.Equal(t, "bbb", d.To)
	assert.Equal(t, int64(-512), d.HeapBytes)
	assert.Equal(t, int64(-50), d.HeapObjects)
	assert.Equal(t, uint32(2), d.GCRuns)
	assert.Equal(t, time.Second, d.Elapsed)
}

func TestSignedBytesSize(t *testing.T) {
	assert.Equal(t, "1KiB", SignedBytesSize(1024))
	assert.Equal(t, "-1KiB", SignedBytesSize(-1024))
}

func TestValidateSnapshot(t *testing.T) {
	ok := snapshotFixture("1f2E3", 1024, time.Now())
	require.NoError(t, ValidateSnapshot(ok))

	noID := ok
	noID.ID = ""
	require.Error(t, ValidateSnapshot(noID))

	badID := ok
	badID.ID = "a/b"
	require.Error(t, ValidateSnapshot(badID))

	noTime := ok
	noTime.Timestamp = time.Time{}
	require.Error(t, ValidateSnapshot(noTime))

	// a multibyte letter before the offending character must not panic
	multibyte := ok
	multibyte.ID = "héllo/"
	err := ValidateSnapshot(multibyte)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"/"`)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := snapshotFixture("1f2E3", 4096, time.Date(2019, 10, 30, 10, 0, 0, 0, time.UTC))
	b, err := yaml.Marshal(s)
	require.NoError(t, err)

	var back MemSnapshot
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, s, back)
}
