// Package interp is the bytecode interpreter: frame layout, opcode
// dispatch and closures. This is the hard-engineering core described
// in §2 — every control construct (iteration, exceptions, tail calls,
// generators, parallel fan-out) rides the same single continuation
// discipline, so each opcode handler is itself a state transition.
package interp

import (
	"sentracore/internal/bytecode"
	"sentracore/internal/types"
)

// ClosureType is the callable produced by the CLOSURE opcode: a fixed
// closure-info descriptor plus the upvalue cells captured at the point
// of creation (§4.1 "Closure").
var ClosureType = &types.TypeDescriptor{Name: "closure"}

type Closure struct {
	Info     *bytecode.ClosureInfo
	Chunk    *bytecode.Chunk
	Upvalues []*types.Ref
}

func (*Closure) Type() *types.TypeDescriptor { return ClosureType }

func init() {
	ClosureType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		cl := self.(*Closure)
		return NewFrame(caller, cl, args), nil
	}
}
