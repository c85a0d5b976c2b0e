package types

// CallFn implements polymorphic invocation: a caller continuation, the
// callee value, and its argument vector in. It returns the next state
// transition for the trampoline — usually (caller, result) for a
// synchronous call, or a park-and-resume-later pair when the callee
// genuinely suspends.
type CallFn func(caller State, self Value, args []Value) (State, Value)

// IterFn implements one leg of the four-call iteration protocol
// (iterate/next/key/value); self is the sequence on the iterate leg and
// the iterator state on the other three.
type IterFn func(caller State, self Value) (State, Value)

// DerefFn collapses a reference to its underlying value; non-references
// are represented by a nil DerefFn on their type descriptor.
type DerefFn func(v Value) Value

// AssignFn writes a value through a reference, returning the assigned
// (derefed) value or an error.
type AssignFn func(v Value, x Value) Value

// HashFn produces a stable hash for v, consistent with CompareFn.
// chain guards against infinite recursion when hashing a container that
// (directly or indirectly) contains itself.
type HashFn func(v Value, chain *HashChain) uint64

// CompareFn orders two values of compatible type, returning <0, 0, >0.
// This is the core's own builtin ordering (used by Map and the default
// sort comparator) and is distinct from the external "compare" method
// that user classes register through the resolver (§4.1); see
// DESIGN.md for why both exist.
type CompareFn func(a, b Value) int

// TypeDescriptor is the per-type operation table described in §4.1.
type TypeDescriptor struct {
	Name   string
	Parent *TypeDescriptor

	Hash    HashFn
	Deref   DerefFn
	Assign  AssignFn
	Call    CallFn
	Iterate IterFn // seq -> first iterator state
	Next    IterFn // iter -> next iterator state
	Key     IterFn // iter -> current key
	Value   IterFn // iter -> current value

	Compare CompareFn

	// Methods is the per-type method-export table consulted by the
	// external resolver when it ranks implementations by argument type
	// (§4.1 "method-export table").
	Methods map[string]Value
}

// IsA reports whether td is t or descends from t through Parent links.
func (td *TypeDescriptor) IsA(t *TypeDescriptor) bool {
	for d := td; d != nil; d = d.Parent {
		if d == t {
			return true
		}
	}
	return false
}

// HashChain is the cycle guard threaded through nested Hash calls.
type HashChain struct {
	seen []Value
}

// Enter returns a chain extended with v, and true if v was already on
// the chain (i.e. a cycle was found and hashing should stop recursing).
func (c *HashChain) Enter(v Value) (*HashChain, bool) {
	chain := c
	if chain == nil {
		chain = &HashChain{}
	}
	for _, s := range chain.seen {
		if s == v {
			return chain, true
		}
	}
	seen := make([]Value, len(chain.seen)+1)
	copy(seen, chain.seen)
	seen[len(chain.seen)] = v
	return &HashChain{seen: seen}, false
}
