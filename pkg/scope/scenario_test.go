package scope

import (
	"testing"

	"github.com/refscope/refscope/pkg/model"
	"github.com/refscope/refscope/pkg/sizeof"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

const scenarioFixture = `
envs:
  - name: global
  - name: closure
    parent: global
ops:
  - op: define
    env: global
    name: x
    value: [1, 2, 3]
  - op: alias
    env: closure
    name: y
    from: x
  - op: modify
    env: closure
    name: y
    value: [9, 9, 9]
  - op: define
    env: closure
    name: local
    value: ok
`

func loadScenario(t *testing.T) model.Scenario {
	t.Helper()
	var s model.Scenario
	require.NoError(t, yaml.Unmarshal([]byte(scenarioFixture), &s))
	return s
}

func bindingByName(t *testing.T, node model.EnvNode, name string) model.BindingInfo {
	t.Helper()
	for _, b := range node.Bindings {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("binding %s not found in env %s", name, node.Name)
	return model.BindingInfo{}
}

func TestRunnerRun(t *testing.T) {
	r := NewRunner()
	dump, err := r.Run(loadScenario(t))
	require.NoError(t, err)
	require.Len(t, dump.Envs, 2)

	global := dump.Envs[0]
	assert.Equal(t, "global", global.Name)
	assert.Empty(t, global.Parent)
	closure := dump.Envs[1]
	assert.Equal(t, "global", closure.Parent)

	// x stays shared (sticky count), y was re-created by modify
	x := bindingByName(t, global, "x")
	assert.Equal(t, 2, x.Refs)
	y := bindingByName(t, closure, "y")
	assert.Equal(t, 1, y.Refs)
	local := bindingByName(t, closure, "local")
	assert.Equal(t, 1, local.Refs)
}

func TestRunnerCopyOnModifyIsolation(t *testing.T) {
	s := loadScenario(t)
	r := NewRunner()

	// replay by hand to observe values, not only counts
	envs := map[string]*Env{}
	for _, es := range s.Envs {
		var parent *Env
		if es.Parent != "" {
			parent = envs[es.Parent]
		}
		envs[es.Name] = New(es.Name, parent)
	}
	for _, op := range s.Ops {
		env := envs[op.Env]
		switch op.Op {
		case model.OpDefine:
			require.NoError(t, env.Define(op.Name, op.Value))
		case model.OpAlias:
			require.NoError(t, env.Alias(op.Name, op.From))
		case model.OpModify:
			value := op.Value
			require.NoError(t, env.Modify(op.Name, func(interface{}) interface{} { return value }))
		}
	}

	x, err := envs["global"].Get("x")
	require.NoError(t, err)
	y, err := envs["closure"].Get("y")
	require.NoError(t, err)
	assert.NotEqual(t, x, y)

	_, err = r.Run(s)
	require.NoError(t, err)
}

func TestRunnerWithSizer(t *testing.T) {
	r := NewRunner(RunnerSizer(sizeof.New()))
	dump, err := r.Run(loadScenario(t))
	require.NoError(t, err)

	local := bindingByName(t, dump.Envs[1], "local")
	assert.True(t, local.Bytes > 0)
}

func TestRunnerRejectsInvalidScenario(t *testing.T) {
	r := NewRunner()
	_, err := r.Run(model.Scenario{})
	require.Error(t, err)

	s := loadScenario(t)
	s.Ops = append(s.Ops, model.OpSpec{Op: model.OpAlias, Env: "global", Name: "z", From: "nope"})
	_, err = r.Run(s)
	require.Error(t, err)
}
