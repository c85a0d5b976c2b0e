package types

import "sync"

// Registry is the embedder-wide home for type descriptors and the
// type-keyed typed-function side table (§4.1, §9 "Typed-function side
// table"): builtin combinators attach per-type overrides here instead
// of going through method dispatch, so e.g. a combinator can special-
// case lists without the cost of a resolver lookup on every step.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*TypeDescriptor
	typed map[*TypeDescriptor]map[string]any
}

// NewRegistry creates an empty registry. Initialization order matters
// (§9 "Global singletons"): register types first, then methods, then
// globals, before executing any bytecode.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*TypeDescriptor),
		typed: make(map[*TypeDescriptor]map[string]any),
	}
}

func (r *Registry) RegisterType(td *TypeDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[td.Name] = td
}

func (r *Registry) LookupType(name string) (*TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	td, ok := r.types[name]
	return td, ok
}

// SetTyped attaches a per-type typed-function implementation for op.
func (r *Registry) SetTyped(td *TypeDescriptor, op string, fn any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slots, ok := r.typed[td]
	if !ok {
		slots = make(map[string]any)
		r.typed[td] = slots
	}
	slots[op] = fn
}

// GetTyped looks up a typed-function override, walking Parent links so
// a subtype inherits its ancestor's override unless it shadows it.
func (r *Registry) GetTyped(td *TypeDescriptor, op string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for d := td; d != nil; d = d.Parent {
		if slots, ok := r.typed[d]; ok {
			if fn, ok := slots[op]; ok {
				return fn, true
			}
		}
	}
	return nil, false
}

// Resolver is the external method-resolution collaborator (§4.1):
// given a method value and the types of its arguments, it returns the
// most-specific registered implementation. The core never implements
// this itself — it only calls back into it via Method.Call.
type Resolver interface {
	Resolve(method Value, argTypes []*TypeDescriptor) (Value, bool)
}
