package scope

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/refscope/refscope/pkg/scope/status"
)

// refs values: a binding count of 2 means "more than one" and is sticky
const (
	singleRef = 1
	sharedRef = 2
)

// object is a bound value with its reference count. One object may be
// reachable from several bindings across environments, so the count is
// atomic rather than guarded by any single environment lock. The value
// is fixed at construction: mutations rebind a fresh object, so readers
// holding an object may use its value without any lock.
type object struct {
	value interface{}
	named int32
}

func newObject(value interface{}) *object {
	return &object{value: value, named: singleRef}
}

func (o *object) refs() int {
	return int(atomic.LoadInt32(&o.named))
}

func (o *object) share() {
	atomic.StoreInt32(&o.named, sharedRef)
}

// Env is one environment in a lexical chain. The parent is fixed at
// construction, which keeps chains acyclic. An Env is safe for
// concurrent use.
type Env struct {
	name     string
	parent   *Env
	bindings map[string]*object
	mu       sync.RWMutex
}

// New creates an environment. A nil parent makes a root environment.
func New(name string, parent *Env) *Env {
	return &Env{
		name:     name,
		parent:   parent,
		bindings: make(map[string]*object),
	}
}

// Name of this environment
func (e *Env) Name() string {
	return e.name
}

// Parent environment, nil at the root
func (e *Env) Parent() *Env {
	return e.parent
}

// Define binds name to a fresh value in this environment. An existing
// local binding is replaced; bindings in parent environments are shadowed,
// not touched.
func (e *Env) Define(name string, value interface{}) error {
	if name == "" {
		return status.ErrEmptyName
	}
	e.mu.Lock()
	e.bindings[name] = newObject(value)
	e.mu.Unlock()
	return nil
}

// lookup resolves name along the parent chain, returning the defining
// environment and the bound object.
func (e *Env) lookup(name string) (*Env, *object, error) {
	for env := e; env != nil; env = env.parent {
		env.mu.RLock()
		o, ok := env.bindings[name]
		env.mu.RUnlock()
		if ok {
			return env, o, nil
		}
	}
	return nil, nil, status.ErrNameNotFound
}

// Get resolves name along the parent chain and returns its value
func (e *Env) Get(name string) (interface{}, error) {
	_, o, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	return o.value, nil
}

// Where returns the environment in which name is bound, walking the
// parent chain from this environment up to the root.
func (e *Env) Where(name string) (*Env, error) {
	env, _, err := e.lookup(name)
	return env, err
}

// Refs reports how many bindings reference the value bound to name:
// 1, or 2 meaning "more than one". The count never decays.
func (e *Env) Refs(name string) (int, error) {
	_, o, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	return o.refs(), nil
}

// Alias binds dst in this environment to the object already bound to src,
// resolving src along the parent chain. Both bindings then share one value
// and report a reference count of 2.
func (e *Env) Alias(dst, src string) error {
	if dst == "" {
		return status.ErrEmptyName
	}
	_, o, err := e.lookup(src)
	if err != nil {
		return err
	}
	o.share()
	e.mu.Lock()
	e.bindings[dst] = o
	e.mu.Unlock()
	return nil
}

// Assign rebinds name to a fresh value in its defining environment,
// walking the parent chain from this environment. Other bindings aliased
// to the previous value keep it.
func (e *Env) Assign(name string, value interface{}) error {
	env, _, err := e.lookup(name)
	if err != nil {
		return err
	}
	env.mu.Lock()
	env.bindings[name] = newObject(value)
	env.mu.Unlock()
	return nil
}

// Modify applies a mutation to the value bound to name, with
// copy-on-modify semantics: a value referenced by a single binding is
// handed to the mutator as is, a shared value is deep copied first so
// aliased bindings are left untouched. Either way the result is rebound
// as a fresh object with a count of 1.
func (e *Env) Modify(name string, mutate func(interface{}) interface{}) error {
	if mutate == nil {
		return status.ErrNilMutator
	}
	env, _, err := e.lookup(name)
	if err != nil {
		return err
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	// re-read under the write lock: the binding may have been replaced
	// since lookup released it
	o, ok := env.bindings[name]
	if !ok {
		return status.ErrNameNotFound
	}
	if o.refs() >= sharedRef {
		env.bindings[name] = newObject(mutate(deepCopy(o.value)))
		return nil
	}
	env.bindings[name] = newObject(mutate(o.value))
	return nil
}

// Names lists the local bindings of this environment, sorted
func (e *Env) Names() []string {
	e.mu.RLock()
	ns := make([]string, 0, len(e.bindings))
	for n := range e.bindings {
		ns = append(ns, n)
	}
	e.mu.RUnlock()
	sort.Strings(ns)
	return ns
}

// Closure bundles a function with the environment it was defined in
type Closure struct {
	body func(*Env) (interface{}, error)
	env  *Env
	_    struct{}
}

// NewClosure captures env as the lexical environment of body
func NewClosure(env *Env, body func(*Env) (interface{}, error)) Closure {
	return Closure{body: body, env: env}
}

// Env yields the captured environment
func (c Closure) Env() *Env {
	return c.env
}

// Call evaluates the closure body in its captured environment
func (c Closure) Call() (interface{}, error) {
	return c.body(c.env)
}
