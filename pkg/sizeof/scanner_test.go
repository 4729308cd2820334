package sizeof

import (
	"strings"
	"testing"

	"github.com/refscope/refscope/pkg/sizeof/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holder struct {
	tag  string
	data []byte
}

type node struct {
	payload [64]byte
	next    *node
}

func TestOfNoRoots(t *testing.T) {
	s := New()
	_, err := s.Of()
	require.Error(t, err)
	assert.True(t, err == status.ErrNoRoots)
}

func TestOfSlice(t *testing.T) {
	s := New()
	buf := make([]byte, 1000)

	r, err := s.Of(buf)
	require.NoError(t, err)
	// slice header + backing array
	assert.True(t, r.TotalBytes >= 1000 && r.TotalBytes <= 1064, "got %d", r.TotalBytes)
	assert.Equal(t, int64(0), r.SharedBytes)
	assert.Equal(t, int64(2), r.Nodes)
	// root header and backing array are both slice bytes
	assert.True(t, r.ByKind["slice"] >= 1000)
}

func TestOfSharedSlice(t *testing.T) {
	s := New()
	buf := make([]byte, 1000)
	a := holder{tag: "a", data: buf}
	b := holder{tag: "b", data: buf}

	single, err := s.Of(a)
	require.NoError(t, err)
	both, err := s.Of(a, b)
	require.NoError(t, err)

	// the backing array is counted once
	assert.True(t, both.TotalBytes < 2*single.TotalBytes)
	assert.Equal(t, int64(1000), both.SharedBytes)
}

func TestOfSharedString(t *testing.T) {
	s := New()
	str := strings.Repeat("x", 500)
	a := struct{ s string }{s: str}
	b := struct{ s string }{s: str}

	r, err := s.Of(a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(500), r.ByKind["string"])
	assert.Equal(t, int64(500), r.SharedBytes)
}

func TestOfCycle(t *testing.T) {
	s := New()
	n1 := &node{}
	n2 := &node{next: n1}
	n1.next = n2

	r, err := s.Of(n1)
	require.NoError(t, err)
	// two blocks plus the root pointer word, despite the cycle
	assert.True(t, r.TotalBytes >= 2*64, "got %d", r.TotalBytes)
	assert.True(t, r.SharedBytes > 0)
}

func TestOfNilRoot(t *testing.T) {
	s := New()
	r, err := s.Of(nil)
	require.NoError(t, err)
	assert.True(t, r.TotalBytes > 0 && r.TotalBytes <= 16)
	assert.Equal(t, int64(1), r.Nodes)
}

func TestOfMap(t *testing.T) {
	s := New()
	m := map[string][]byte{
		"one": make([]byte, 100),
		"two": make([]byte, 200),
	}
	r, err := s.Of(m)
	require.NoError(t, err)
	assert.True(t, r.TotalBytes > 300, "got %d", r.TotalBytes)
	assert.Equal(t, int64(300), r.ByKind["slice"])
}

func TestOfMaxDepth(t *testing.T) {
	s := New(MaxDepth(1))
	deep := &holder{data: make([]byte, 1000)}

	r, err := s.Of(deep)
	require.NoError(t, err)
	assert.True(t, r.Truncated)
	assert.True(t, r.TotalBytes < 1000)

	_, err = New(MaxDepth(-1)).Of(deep)
	require.Error(t, err)
}

func TestOfCountShared(t *testing.T) {
	buf := make([]byte, 1000)
	a := holder{data: buf}
	b := holder{data: buf}

	dedup, err := New().Of(a, b)
	require.NoError(t, err)
	naive, err := New(CountShared(true)).Of(a, b)
	require.NoError(t, err)

	assert.Equal(t, dedup.TotalBytes+1000, naive.TotalBytes)
}

func TestCompare(t *testing.T) {
	s := New()
	buf := make([]byte, 1000)
	a := holder{tag: "a", data: buf}
	b := holder{tag: "b", data: buf}

	c, err := s.Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.SharedBytes)
	assert.Equal(t, c.SizeA+c.SizeB-c.SharedBytes, c.Together)

	c, err = s.Compare(holder{data: make([]byte, 10)}, holder{data: make([]byte, 20)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.SharedBytes)
}

func TestOfBoxedValues(t *testing.T) {
	s := New()
	vs := []interface{}{1, 2.5, "boxed"}
	r, err := s.Of(vs)
	require.NoError(t, err)
	// slice header + 3 interface pairs + boxed blocks + string bytes
	assert.True(t, r.TotalBytes > 3*16, "got %d", r.TotalBytes)
	// the boxed string header plus its backing bytes
	assert.True(t, r.ByKind["string"] >= 5)
}
