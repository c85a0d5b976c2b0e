// Package types implements the core value model: the uniform boxed
// Value, its per-type operation table, and the continuation ("state")
// contract every non-trivial operation resumes through.
package types

// Value is a reference-style object carrying a pointer to its type
// descriptor. Every boxed runtime value — numbers, containers, closures,
// errors, references — implements this.
type Value interface {
	Type() *TypeDescriptor
}

// State is a resumable computation. Its Run method is the sole
// resumption entry: any operation that hands control to a caller must
// eventually make that caller's Run execute exactly once.
//
// Run does not recurse into its continuation directly. Instead it
// returns the next (state, value) pair for a trampoline (see Drive) to
// apply. This is the Go rendering of the source's inline
// run(state, value) chaining: the same single-entry-point discipline,
// but stack-safe, since tail transitions never grow the Go call stack.
// A nil next-state tells the trampoline the chain has terminated; the
// accompanying value is the final result.
type State interface {
	Run(result Value) (State, Value)
}

// Drive runs a state machine to completion in the current goroutine.
// It is legal to call inline (per the scheduler contract) and is what
// every synchronous combinator, and the interpreter's own entry point,
// uses to turn a chain of tail transitions into a final value.
func Drive(s State, v Value) Value {
	for s != nil {
		s, v = s.Run(v)
	}
	return v
}

// Deref collapses references to their underlying value. Non-references
// return themselves. Looping until the value is stable gives the
// deref(deref(x)) == deref(x) idempotence the spec requires even when a
// reference happens to wrap another reference.
func Deref(v Value) Value {
	for {
		td := v.Type()
		if td.Deref == nil {
			return v
		}
		nv := td.Deref(v)
		if nv == v {
			return v
		}
		v = nv
	}
}

// Assign writes through a reference. Non-references fail with a
// TypeError, per §4.1.
func Assign(v Value, x Value) Value {
	td := v.Type()
	if td.Assign == nil {
		return NewError(TypeError, "cannot assign to value of type "+td.Name)
	}
	return td.Assign(v, x)
}

// IsError reports whether v is a propagating error value.
func IsError(v Value) bool {
	e, ok := v.(*Error)
	return ok && e.Propagating
}

// Truthy reports whether v is anything other than the nil singleton.
// some, integers, strings — everything but Nil — is truthy.
func Truthy(v Value) bool {
	return v != Nil
}

// Call is the generic entry point for polymorphic invocation: it
// dispatches through v's type descriptor, propagating a propagating
// error in v without invoking Call on it. Arguments are passed through
// as they are, errors included.
func Call(caller State, v Value, args []Value) (State, Value) {
	if e, ok := v.(*Error); ok && e.Propagating {
		return caller, e
	}
	td := v.Type()
	if td.Call == nil {
		return caller, NewError(TypeError, "value of type "+td.Name+" is not callable")
	}
	return td.Call(caller, v, args)
}
