package scope

import (
	"github.com/refscope/refscope/pkg/model"
	"github.com/refscope/refscope/pkg/sizeof"
)

// Dump walks the parent chain from this environment to the root and
// renders it as a serializable graph. Environments captured by Closure
// values found in bindings are included as well; a visited set keeps the
// traversal safe when closures capture environments already on the chain.
//
// When sizer is not nil each binding is annotated with its retained size.
func (e *Env) Dump(sizer *sizeof.Scanner) model.ScopeDump {
	var dump model.ScopeDump
	visited := make(map[*Env]struct{})
	pending := []*Env{e}

	for len(pending) > 0 {
		env := pending[0]
		pending = pending[1:]
		if env == nil {
			continue
		}
		if _, ok := visited[env]; ok {
			continue
		}
		visited[env] = struct{}{}

		node := model.EnvNode{Name: env.name}
		if env.parent != nil {
			node.Parent = env.parent.name
			pending = append(pending, env.parent)
		}
		for _, name := range env.Names() {
			_, o, err := env.lookup(name)
			if err != nil {
				continue
			}
			b := model.BindingInfo{Name: name, Refs: o.refs()}
			if c, ok := o.value.(Closure); ok {
				pending = append(pending, c.Env())
			} else if sizer != nil {
				if r, err := sizer.Of(o.value); err == nil {
					b.Bytes = r.TotalBytes
				}
			}
			node.Bindings = append(node.Bindings, b)
		}
		dump.Envs = append(dump.Envs, node)
	}
	return dump
}
