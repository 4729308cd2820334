package model

import (
	"fmt"
)

// Scenario ops
const (
	OpDefine = "define"
	OpAlias  = "alias"
	OpAssign = "assign"
	OpModify = "modify"
)

// EnvSpec declares one environment in a scenario. Parent is empty for the
// root environment only.
type EnvSpec struct {
	Name   string `json:"name" yaml:"name"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
	_      struct{}
}

// OpSpec is one step of a scenario, applied in order.
//
//   - define: bind Name to Value in Env
//   - alias: bind Name in Env to the object already bound to From
//   - assign: rebind Name to Value in its defining environment, starting from Env
//   - modify: apply a copy-on-modify write of Value to Name, starting from Env
type OpSpec struct {
	Op    string      `json:"op" yaml:"op"`
	Env   string      `json:"env" yaml:"env"`
	Name  string      `json:"name" yaml:"name"`
	From  string      `json:"from,omitempty" yaml:"from,omitempty"`
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
	_     struct{}
}

// Scenario is a replayable description of environments and binding operations,
// typically loaded from a YAML file.
type Scenario struct {
	Envs []EnvSpec `json:"envs" yaml:"envs"`
	Ops  []OpSpec  `json:"ops" yaml:"ops"`
	_    struct{}
}

// ValidateScenario verifies env declarations and op references
func ValidateScenario(s Scenario) error {
	if len(s.Envs) == 0 {
		return fmt.Errorf("empty field: scenario declares no environment")
	}
	known := make(map[string]struct{}, len(s.Envs))
	roots := 0
	for _, e := range s.Envs {
		if e.Name == "" {
			return fmt.Errorf("empty field: environment name is empty")
		}
		if _, dup := known[e.Name]; dup {
			return fmt.Errorf("duplicate environment: %s", e.Name)
		}
		if e.Parent == "" {
			roots++
		} else if _, ok := known[e.Parent]; !ok {
			// parents must be declared before children so the chain is acyclic
			return fmt.Errorf("environment %s declared before its parent %s", e.Name, e.Parent)
		}
		known[e.Name] = struct{}{}
	}
	if roots != 1 {
		return fmt.Errorf("scenario must declare exactly one root environment, got %d", roots)
	}
	for i, op := range s.Ops {
		if _, ok := known[op.Env]; !ok {
			return fmt.Errorf("op %d refers to undeclared environment %s", i, op.Env)
		}
		if op.Name == "" {
			return fmt.Errorf("op %d has no binding name", i)
		}
		switch op.Op {
		case OpDefine, OpAssign, OpModify:
		case OpAlias:
			if op.From == "" {
				return fmt.Errorf("op %d: alias requires a source binding", i)
			}
		default:
			return fmt.Errorf("op %d has unsupported op %q", i, op.Op)
		}
	}
	return nil
}

// BindingInfo describes one binding in a scope dump
type BindingInfo struct {
	Name  string `json:"name" yaml:"name"`
	Refs  int    `json:"refs" yaml:"refs"`
	Bytes int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	_     struct{}
}

// EnvNode describes one environment in a scope dump
type EnvNode struct {
	Name     string        `json:"name" yaml:"name"`
	Parent   string        `json:"parent,omitempty" yaml:"parent,omitempty"`
	Bindings []BindingInfo `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	_        struct{}
}

// ScopeDump is the serializable form of an environment graph
type ScopeDump struct {
	Envs []EnvNode `json:"envs" yaml:"envs"`
	_    struct{}
}
