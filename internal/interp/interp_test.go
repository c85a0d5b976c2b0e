package interp

import (
	"testing"

	"sentracore/internal/bytecode"
	"sentracore/internal/container"
	"sentracore/internal/types"
)

func TestReturnConstant(t *testing.T) {
	chunk := bytecode.NewChunk()
	idx := chunk.AddConstant(types.Int{V: 42})
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(idx))
	chunk.WriteOp(bytecode.OpReturn)

	got := Run(chunk, 0, nil)
	want := types.Int{V: 42}
	if got != types.Value(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestCallBuiltinTail(t *testing.T) {
	chunk := bytecode.NewChunk()
	add := types.NewBuiltin("add", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Add(args[0], args[1])
	})
	fnIdx := chunk.AddConstant(add)
	aIdx := chunk.AddConstant(types.Int{V: 10})
	bIdx := chunk.AddConstant(types.Int{V: 32})

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(fnIdx))
	chunk.WriteOp(bytecode.OpPush)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(aIdx))
	chunk.WriteOp(bytecode.OpPush)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(bIdx))
	chunk.WriteOp(bytecode.OpPush)

	chunk.WriteOp(bytecode.OpCall)
	chunk.WriteByte(2)
	chunk.WriteOp(bytecode.OpReturn)

	got := Run(chunk, 0, nil)
	want := types.Int{V: 42}
	if got != types.Value(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestForNextOverList(t *testing.T) {
	chunk := bytecode.NewChunk()
	list := container.NewList()
	list.Append(types.Int{V: 1})
	list.Append(types.Int{V: 2})
	list.Append(types.Int{V: 3})
	listIdx := chunk.AddConstant(list)
	zeroIdx := chunk.AddConstant(types.Int{V: 0})
	sumAdd := types.NewBuiltin("sum+value", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Add(types.Deref(args[0]), args[1])
	})
	sumAddIdx := chunk.AddConstant(sumAdd)

	// slot 0: running sum, a ref-cell local introduced by ENTER.
	chunk.WriteOp(bytecode.OpEnter)
	chunk.WriteByte(1)
	chunk.WriteByte(0)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(zeroIdx))
	chunk.WriteOp(bytecode.OpVar)
	chunk.WriteByte(0)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(listIdx))
	chunk.WriteOp(bytecode.OpPush)

	forExit := chunk.EmitJump(bytecode.OpFor)

	loopStart := len(chunk.Code)
	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(0)
	chunk.WriteOp(bytecode.OpPush) // push the sum ref cell

	chunk.WriteOp(bytecode.OpValue)
	chunk.WriteOp(bytecode.OpPush) // push the current element

	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(2)
	chunk.WriteUint16(uint16(sumAddIdx))

	chunk.WriteOp(bytecode.OpVar)
	chunk.WriteByte(0)

	nextExit := chunk.EmitJump(bytecode.OpNext)
	loopBack := chunk.EmitJump(bytecode.OpLoop)
	chunk.PatchJumpTo(loopBack, loopStart)

	exitTarget := len(chunk.Code)
	chunk.PatchJumpTo(forExit, exitTarget)
	chunk.PatchJumpTo(nextExit, exitTarget)

	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(0)
	chunk.WriteOp(bytecode.OpReturn)

	got := types.Deref(Run(chunk, 0, nil))
	want := types.Int{V: 6}
	if got != types.Value(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestTryCatch(t *testing.T) {
	chunk := bytecode.NewChunk()
	failing := types.NewBuiltin("boom", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.NewError(types.RangeError, "boom")
	})
	fnIdx := chunk.AddConstant(failing)

	tryTarget := chunk.EmitJump(bytecode.OpTry)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(fnIdx))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpCall)
	chunk.WriteByte(0)

	afterCall := chunk.EmitJump(bytecode.OpLoop) // unreachable success path jump past handler
	handler := len(chunk.Code)
	chunk.PatchJumpTo(tryTarget, handler)

	chunk.WriteOp(bytecode.OpCatch)
	chunk.WriteUint16(0)
	chunk.WriteOp(bytecode.OpReturn)

	successExit := len(chunk.Code)
	chunk.PatchJumpTo(afterCall, successExit)
	chunk.WriteOp(bytecode.OpReturn)

	got := Run(chunk, 0, nil)
	errVal, ok := got.(*types.Error)
	if !ok {
		t.Fatalf("got %#v, want a demoted error value", got)
	}
	if errVal.Propagating {
		t.Fatalf("expected CATCH to demote the error, still propagating: %v", errVal)
	}
	if errVal.Kind != types.RangeError {
		t.Fatalf("got kind %v, want RangeError", errVal.Kind)
	}
}

// TestSuspendResumeGeneratorYieldsThreeThenNil drives a FOR loop whose
// body SUSPENDs each iteration (§8 scenario 10: three successive values
// of a generator produce 1, 2, 3, then the fourth resume exhausts it).
// Reading the current element off a suspension forwards to the frame's
// topmost iteration slot, so the loop body reads VALUE before
// suspending and the driver reads it back through the suspension.
func TestSuspendResumeGeneratorYieldsThreeThenNil(t *testing.T) {
	chunk := bytecode.NewChunk()
	list := container.NewList()
	list.Append(types.Int{V: 1})
	list.Append(types.Int{V: 2})
	list.Append(types.Int{V: 3})
	listIdx := chunk.AddConstant(list)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(listIdx))
	chunk.WriteOp(bytecode.OpPush)

	forExit := chunk.EmitJump(bytecode.OpFor)
	loopStart := len(chunk.Code)

	chunk.WriteOp(bytecode.OpValue)
	chunk.WriteOp(bytecode.OpPush) // something for RESUME to discard
	chunk.WriteOp(bytecode.OpSuspend)
	chunk.WriteOp(bytecode.OpResume)

	nextExit := chunk.EmitJump(bytecode.OpNext)
	loopBack := chunk.EmitJump(bytecode.OpLoop)
	chunk.PatchJumpTo(loopBack, loopStart)

	exitTarget := len(chunk.Code)
	chunk.PatchJumpTo(forExit, exitTarget)
	chunk.PatchJumpTo(nextExit, exitTarget)
	chunk.WriteOp(bytecode.OpReturn)

	valueOf := func(susp types.Value) int64 {
		t.Helper()
		v := types.Drive(susp.Type().Value(types.Terminal, susp))
		n, ok := v.(types.Int)
		if !ok {
			t.Fatalf("expected Int value, got %#v", v)
		}
		return n.V
	}

	g1 := Run(chunk, 0, nil)
	if _, ok := g1.(*suspension); !ok {
		t.Fatalf("expected first SUSPEND to yield a suspension, got %#v", g1)
	}
	if got := valueOf(g1); got != 1 {
		t.Fatalf("expected first value 1, got %d", got)
	}

	g2 := types.Drive(g1.Type().Call(types.Terminal, g1, []types.Value{types.Nil}))
	if _, ok := g2.(*suspension); !ok {
		t.Fatalf("expected second resume to yield a suspension, got %#v", g2)
	}
	if got := valueOf(g2); got != 2 {
		t.Fatalf("expected second value 2, got %d", got)
	}

	g3 := types.Drive(g2.Type().Call(types.Terminal, g2, []types.Value{types.Nil}))
	if got := valueOf(g3); got != 3 {
		t.Fatalf("expected third value 3, got %d", got)
	}

	final := types.Drive(g3.Type().Call(types.Terminal, g3, []types.Value{types.Nil}))
	if _, ok := final.(*suspension); ok {
		t.Fatalf("expected the fourth resume to exhaust the generator, got another suspension")
	}
}

// TestClosureCapturesLocalAndObservesLetIResolution exercises CLOSURE's
// local-upvalue capture path: capturing an as-yet-uninitialized slot
// records a patch (captureLocal), and a later LETI on that same slot
// must fire the patch so the closure's captured Ref reflects the value,
// not the placeholder it saw at capture time.
func TestClosureCapturesLocalAndObservesLetIResolution(t *testing.T) {
	chunk := bytecode.NewChunk()
	fortyTwo := chunk.AddConstant(types.Int{V: 42})
	childInfo := &bytecode.ClosureInfo{Name: "child", Entry: 0, FrameSize: 0, NumUpvalue: 1}
	childInfoIdx := chunk.AddConstant(childInfo)

	chunk.WriteOp(bytecode.OpEnter)
	chunk.WriteByte(0)
	chunk.WriteByte(1) // one uninitialized slot at index 0

	chunk.WriteOp(bytecode.OpClosure)
	chunk.WriteUint16(uint16(childInfoIdx))
	chunk.WriteByte(1)    // one upvalue
	chunk.WriteByte(1)    // isLocal = true
	chunk.WriteByte(0)    // local slot index 0
	chunk.WriteOp(bytecode.OpPush)

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(fortyTwo))
	chunk.WriteOp(bytecode.OpLetI)
	chunk.WriteByte(0)

	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(1) // the pushed closure, now sitting at slot 1
	chunk.WriteOp(bytecode.OpReturn)

	got := Run(chunk, 0, nil)
	cl, ok := got.(*Closure)
	if !ok {
		t.Fatalf("expected *Closure, got %#v", got)
	}
	if len(cl.Upvalues) != 1 {
		t.Fatalf("expected one captured upvalue, got %d", len(cl.Upvalues))
	}
	if cl.Upvalues[0].Slot != types.Value(types.Int{V: 42}) {
		t.Fatalf("expected captured upvalue to observe LETI's resolution (42), got %#v", cl.Upvalues[0].Slot)
	}
}

// TestWithXUnpacksTuple exercises WITHX's success path over a Tuple.
func TestWithXUnpacksTuple(t *testing.T) {
	chunk := bytecode.NewChunk()
	oneIdx := chunk.AddConstant(types.Int{V: 1})
	twoIdx := chunk.AddConstant(types.Int{V: 2})
	add := types.NewBuiltin("add", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Add(args[0], args[1])
	})
	addIdx := chunk.AddConstant(add)

	chunk.WriteOp(bytecode.OpTupleNew)
	chunk.WriteByte(2)
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(oneIdx))
	chunk.WriteOp(bytecode.OpTupleSet)
	chunk.WriteByte(1)
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(twoIdx))
	chunk.WriteOp(bytecode.OpTupleSet)
	chunk.WriteByte(2)

	chunk.WriteOp(bytecode.OpWithX)
	chunk.WriteByte(2)

	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(0)
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(1)
	chunk.WriteOp(bytecode.OpPush)

	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(2)
	chunk.WriteUint16(uint16(addIdx))
	chunk.WriteOp(bytecode.OpReturn)

	got := Run(chunk, 0, nil)
	want := types.Int{V: 3}
	if got != types.Value(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

// TestLetXUnpacksListInPlace exercises LETX's success path over a List,
// filling ENTER-allocated uninitialized slots directly.
func TestLetXUnpacksListInPlace(t *testing.T) {
	chunk := bytecode.NewChunk()
	list := container.NewList()
	list.Append(types.Int{V: 10})
	list.Append(types.Int{V: 20})
	listIdx := chunk.AddConstant(list)
	add := types.NewBuiltin("add", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Add(args[0], args[1])
	})
	addIdx := chunk.AddConstant(add)

	chunk.WriteOp(bytecode.OpEnter)
	chunk.WriteByte(0)
	chunk.WriteByte(2) // two uninitialized slots, indices 0 and 1

	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(listIdx))
	chunk.WriteOp(bytecode.OpLetX)
	chunk.WriteByte(0)
	chunk.WriteByte(2)

	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(0)
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpLocal)
	chunk.WriteByte(1)
	chunk.WriteOp(bytecode.OpPush)

	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(2)
	chunk.WriteUint16(uint16(addIdx))
	chunk.WriteOp(bytecode.OpReturn)

	got := types.Deref(Run(chunk, 0, nil))
	want := types.Int{V: 30}
	if got != types.Value(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

// TestUnpackArityShortfallRaisesValueError covers both branches of
// unpack's arity check (Tuple and iterate-protocol sources): spec.md §7
// lists a failed unpack arity as a ValueError, and the original
// ml_bytecode_fns.c DO_WITHX_FN/DO_LETX_FN/DO_VARX_FN raise exactly
// that, rather than silently padding missing slots with Nil.
func TestUnpackArityShortfallRaisesValueError(t *testing.T) {
	t.Run("tuple", func(t *testing.T) {
		chunk := bytecode.NewChunk()
		oneIdx := chunk.AddConstant(types.Int{V: 1})

		chunk.WriteOp(bytecode.OpTupleNew)
		chunk.WriteByte(1)
		chunk.WriteOp(bytecode.OpPush)
		chunk.WriteOp(bytecode.OpLoad)
		chunk.WriteUint16(uint16(oneIdx))
		chunk.WriteOp(bytecode.OpTupleSet)
		chunk.WriteByte(1)

		chunk.WriteOp(bytecode.OpWithX)
		chunk.WriteByte(2)
		chunk.WriteOp(bytecode.OpReturn)

		got := Run(chunk, 0, nil)
		errVal, ok := got.(*types.Error)
		if !ok {
			t.Fatalf("got %#v, want a propagated error", got)
		}
		if !errVal.Propagating {
			t.Fatalf("expected the error to still be propagating (no TRY/CATCH): %v", errVal)
		}
		if errVal.Kind != types.ValueError {
			t.Fatalf("got kind %v, want ValueError", errVal.Kind)
		}
	})

	t.Run("iterate", func(t *testing.T) {
		chunk := bytecode.NewChunk()
		list := container.NewList()
		list.Append(types.Int{V: 1})
		listIdx := chunk.AddConstant(list)

		chunk.WriteOp(bytecode.OpEnter)
		chunk.WriteByte(0)
		chunk.WriteByte(2)

		chunk.WriteOp(bytecode.OpLoad)
		chunk.WriteUint16(uint16(listIdx))
		chunk.WriteOp(bytecode.OpLetX)
		chunk.WriteByte(0)
		chunk.WriteByte(2)
		chunk.WriteOp(bytecode.OpReturn)

		got := Run(chunk, 0, nil)
		errVal, ok := got.(*types.Error)
		if !ok {
			t.Fatalf("got %#v, want a propagated error", got)
		}
		if !errVal.Propagating {
			t.Fatalf("expected the error to still be propagating (no TRY/CATCH): %v", errVal)
		}
		if errVal.Kind != types.ValueError {
			t.Fatalf("got kind %v, want ValueError", errVal.Kind)
		}
	})
}
