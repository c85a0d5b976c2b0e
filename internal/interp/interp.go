package interp

import (
	"sentracore/internal/bytecode"
	"sentracore/internal/types"
)

// Run compiles nothing (the surface parser/compiler is out of scope,
// §1) — it assumes chunk is already valid bytecode, wraps it in a
// closure of arity len(args) entered at offset 0, and drives it to
// completion,
// the entry point used by cmd/sentra-core and this package's tests.
func Run(chunk *bytecode.Chunk, frameSize int, args []types.Value) types.Value {
	info := &bytecode.ClosureInfo{Entry: 0, FrameSize: frameSize, Arity: len(args), Name: "main"}
	cl := &Closure{Info: info, Chunk: chunk}
	s, v := types.Call(types.Terminal, cl, args)
	return types.Drive(s, v)
}
