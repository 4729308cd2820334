package scope

import (
	"fmt"

	"github.com/refscope/refscope/pkg/model"
	"github.com/refscope/refscope/pkg/sizeof"

	"go.uber.org/zap"
)

// RunnerOption to configure a scenario runner
type RunnerOption func(*Runner)

// RunnerLogger sets a logger for this runner
func RunnerLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.l = l
		}
	}
}

// RunnerSizer annotates dumped bindings with their retained size
func RunnerSizer(s *sizeof.Scanner) RunnerOption {
	return func(r *Runner) {
		r.sizer = s
	}
}

// Runner replays a scenario descriptor against live environments and
// dumps the resulting scope graph.
type Runner struct {
	l     *zap.Logger
	sizer *sizeof.Scanner
	_     struct{}
}

// NewRunner creates a scenario runner, honoring options
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		l: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// Run validates the scenario, builds its environments, applies the ops in
// order and returns the final scope graph.
func (r *Runner) Run(s model.Scenario) (*model.ScopeDump, error) {
	envs, err := r.Build(s)
	if err != nil {
		return nil, err
	}

	dump := &model.ScopeDump{}
	for _, es := range s.Envs {
		env := envs[es.Name]
		node := model.EnvNode{Name: es.Name, Parent: es.Parent}
		for _, name := range env.Names() {
			refs, err := env.Refs(name)
			if err != nil {
				continue
			}
			b := model.BindingInfo{Name: name, Refs: refs}
			if r.sizer != nil {
				v, gerr := env.Get(name)
				if gerr == nil {
					if rep, serr := r.sizer.Of(v); serr == nil {
						b.Bytes = rep.TotalBytes
					}
				}
			}
			node.Bindings = append(node.Bindings, b)
		}
		dump.Envs = append(dump.Envs, node)
	}
	return dump, nil
}

// Build validates the scenario, creates its environments and applies the
// ops in order. The resulting environments are live and keyed by name.
func (r *Runner) Build(s model.Scenario) (map[string]*Env, error) {
	if err := model.ValidateScenario(s); err != nil {
		return nil, err
	}

	envs := make(map[string]*Env, len(s.Envs))
	for _, es := range s.Envs {
		var parent *Env
		if es.Parent != "" {
			parent = envs[es.Parent]
		}
		envs[es.Name] = New(es.Name, parent)
	}

	for i, op := range s.Ops {
		env := envs[op.Env]
		var err error
		switch op.Op {
		case model.OpDefine:
			err = env.Define(op.Name, op.Value)
		case model.OpAlias:
			err = env.Alias(op.Name, op.From)
		case model.OpAssign:
			err = env.Assign(op.Name, op.Value)
		case model.OpModify:
			value := op.Value
			err = env.Modify(op.Name, func(interface{}) interface{} {
				return value
			})
		}
		if err != nil {
			return nil, fmt.Errorf("op %d (%s %s in %s): %v", i, op.Op, op.Name, op.Env, err)
		}
		r.l.Debug("scenario op applied",
			zap.Int("op", i),
			zap.String("verb", op.Op),
			zap.String("name", op.Name),
			zap.String("env", op.Env),
		)
	}
	return envs, nil
}
