package scope

import (
	"sync"
	"testing"

	"github.com/refscope/refscope/pkg/scope/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainFixture(t *testing.T) (global, mid, leaf *Env) {
	t.Helper()
	global = New("global", nil)
	mid = New("mid", global)
	leaf = New("leaf", mid)
	require.NoError(t, global.Define("x", []int{1, 2, 3}))
	require.NoError(t, mid.Define("y", "hello"))
	return global, mid, leaf
}

func TestGetWalksChain(t *testing.T) {
	global, m, leaf := chainFixture(t)

	v, err := leaf.Get("x")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)

	v, err = leaf.Get("y")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = leaf.Get("zzz")
	require.Error(t, err)
	assert.True(t, err == status.ErrNameNotFound)

	_, err = global.Get("y")
	require.Error(t, err)

	assert.Nil(t, global.Parent())
	assert.Equal(t, m, leaf.Parent())
	assert.Equal(t, "global", global.Name())
}

func TestWhere(t *testing.T) {
	global, m, leaf := chainFixture(t)

	env, err := leaf.Where("x")
	require.NoError(t, err)
	assert.Equal(t, global, env)

	env, err = leaf.Where("y")
	require.NoError(t, err)
	assert.Equal(t, m, env)

	_, err = leaf.Where("zzz")
	require.Error(t, err)
}

func TestShadowing(t *testing.T) {
	global, _, leaf := chainFixture(t)

	require.NoError(t, leaf.Define("x", 42))
	v, err := leaf.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// the global binding is shadowed, not overwritten
	v, err = global.Get("x")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestAssignRebindsInDefiningEnv(t *testing.T) {
	global, _, leaf := chainFixture(t)

	require.NoError(t, leaf.Assign("x", "replaced"))
	v, err := global.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "replaced", v)

	assert.Empty(t, leaf.Names())
	require.Error(t, leaf.Assign("zzz", 1))
}

func TestRefsAndAlias(t *testing.T) {
	global, _, leaf := chainFixture(t)

	refs, err := leaf.Refs("x")
	require.NoError(t, err)
	assert.Equal(t, 1, refs)

	require.NoError(t, leaf.Alias("x2", "x"))

	// both bindings now report "more than one"
	refs, err = leaf.Refs("x2")
	require.NoError(t, err)
	assert.Equal(t, 2, refs)
	refs, err = global.Refs("x")
	require.NoError(t, err)
	assert.Equal(t, 2, refs)

	require.Error(t, leaf.Alias("x3", "zzz"))
	require.Error(t, leaf.Alias("", "x"))
}

func TestModifySingleRef(t *testing.T) {
	global, _, _ := chainFixture(t)

	require.NoError(t, global.Modify("x", func(v interface{}) interface{} {
		s := v.([]int)
		s[0] = 99
		return s
	}))
	v, err := global.Get("x")
	require.NoError(t, err)
	assert.Equal(t, []int{99, 2, 3}, v)

	// still a single reference
	refs, err := global.Refs("x")
	require.NoError(t, err)
	assert.Equal(t, 1, refs)

	require.Error(t, global.Modify("x", nil))
	require.Error(t, global.Modify("zzz", func(v interface{}) interface{} { return v }))
}

func TestModifyCopiesSharedValue(t *testing.T) {
	global, _, leaf := chainFixture(t)
	require.NoError(t, leaf.Alias("x2", "x"))

	require.NoError(t, leaf.Modify("x2", func(v interface{}) interface{} {
		s := v.([]int)
		s[0] = 99
		return s
	}))

	// the alias got a private copy, the original binding is untouched
	v, err := leaf.Get("x2")
	require.NoError(t, err)
	assert.Equal(t, []int{99, 2, 3}, v)
	v, err = global.Get("x")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)

	// the fresh copy is singly referenced again, the shared count stays sticky
	refs, err := leaf.Refs("x2")
	require.NoError(t, err)
	assert.Equal(t, 1, refs)
	refs, err = global.Refs("x")
	require.NoError(t, err)
	assert.Equal(t, 2, refs)
}

func TestDefineEmptyName(t *testing.T) {
	global := New("global", nil)
	require.Error(t, global.Define("", 1))
}

func TestClosureCapturesEnv(t *testing.T) {
	global, _, leaf := chainFixture(t)

	c := NewClosure(leaf, func(env *Env) (interface{}, error) {
		return env.Get("x")
	})
	require.NoError(t, global.Define("f", c))

	v, err := c.Call()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
	assert.Equal(t, leaf, c.Env())
}

func TestConcurrentAccess(t *testing.T) {
	global := New("global", nil)
	require.NoError(t, global.Define("n", 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = global.Modify("n", func(v interface{}) interface{} {
					return v.(int) + 1
				})
				_, _ = global.Get("n")
				_, _ = global.Refs("n")
			}
		}()
	}
	wg.Wait()

	v, err := global.Get("n")
	require.NoError(t, err)
	assert.Equal(t, 800, v)
}

func TestConcurrentGetAndModify(t *testing.T) {
	global := New("global", nil)
	require.NoError(t, global.Define("xs", []int{0, 0, 0}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = global.Modify("xs", func(v interface{}) interface{} {
					next := append([]int(nil), v.([]int)...)
					next[0]++
					return next
				})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				v, err := global.Get("xs")
				if err == nil {
					_ = v.([]int)[0]
				}
			}
		}()
	}
	wg.Wait()

	v, err := global.Get("xs")
	require.NoError(t, err)
	assert.Equal(t, 800, v.([]int)[0])
}

func TestDeepCopyIsolation(t *testing.T) {
	type inner struct{ N int }
	type outer struct {
		M map[string][]int
		P *inner
	}
	orig := &outer{
		M: map[string][]int{"a": {1, 2}},
		P: &inner{N: 1},
	}

	c := deepCopy(orig).(*outer)
	c.M["a"][0] = 99
	c.P.N = 99

	assert.Equal(t, 1, orig.M["a"][0])
	assert.Equal(t, 1, orig.P.N)
}

func TestDeepCopyCycle(t *testing.T) {
	type ring struct{ Next *ring }
	a := &ring{}
	b := &ring{Next: a}
	a.Next = b

	c := deepCopy(a).(*ring)
	assert.True(t, c != a)
	assert.True(t, c.Next.Next == c)
}
