package scope

import (
	"testing"

	"github.com/refscope/refscope/pkg/sizeof"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpWalksParentChain(t *testing.T) {
	global := New("global", nil)
	mid := New("mid", global)
	leaf := New("leaf", mid)

	require.NoError(t, global.Define("x", []int64{1, 2, 3}))
	require.NoError(t, mid.Define("y", "hello"))
	require.NoError(t, leaf.Define("z", 42))

	dump := leaf.Dump(nil)
	require.Len(t, dump.Envs, 3)

	byName := make(map[string]int)
	for i, node := range dump.Envs {
		byName[node.Name] = i
	}
	require.Contains(t, byName, "global")
	require.Contains(t, byName, "mid")
	require.Contains(t, byName, "leaf")

	assert.Equal(t, "mid", dump.Envs[byName["leaf"]].Parent)
	assert.Equal(t, "global", dump.Envs[byName["mid"]].Parent)
	assert.Empty(t, dump.Envs[byName["global"]].Parent)
	// leaf comes first: the walk starts there
	assert.Equal(t, 0, byName["leaf"])
}

func TestDumpFollowsClosures(t *testing.T) {
	global := New("global", nil)
	detached := New("detached", nil)
	require.NoError(t, detached.Define("hidden", "state"))

	counter := NewClosure(detached, func(env *Env) (interface{}, error) {
		return env.Get("hidden")
	})
	require.NoError(t, global.Define("fn", counter))

	dump := global.Dump(nil)
	require.Len(t, dump.Envs, 2)
	assert.Equal(t, "detached", dump.Envs[1].Name)
	require.Len(t, dump.Envs[1].Bindings, 1)
	assert.Equal(t, "hidden", dump.Envs[1].Bindings[0].Name)
}

func TestDumpCyclicCapture(t *testing.T) {
	global := New("global", nil)
	// a closure capturing its own defining environment must not loop
	self := NewClosure(global, func(env *Env) (interface{}, error) {
		return nil, nil
	})
	require.NoError(t, global.Define("rec", self))

	dump := global.Dump(nil)
	require.Len(t, dump.Envs, 1)
}

func TestDumpWithSizer(t *testing.T) {
	global := New("global", nil)
	require.NoError(t, global.Define("payload", make([]byte, 2048)))

	dump := global.Dump(sizeof.New())
	require.Len(t, dump.Envs, 1)
	require.Len(t, dump.Envs[0].Bindings, 1)
	assert.True(t, dump.Envs[0].Bindings[0].Bytes >= 2048)
}
