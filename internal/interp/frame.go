package interp

import (
	"fmt"

	"sentracore/internal/bytecode"
	"sentracore/internal/container"
	"sentracore/internal/types"
)

// pending records which suspending operation a Frame is waiting on, so
// Run knows how to apply the resumed value once control returns.
type pending int

const (
	pendNone pending = iota
	pendIterate
	pendNext
	pendValue
	pendKey
	pendCall
)

type iterCtx struct {
	iter types.Value
	exit int
}

type tryCtx struct {
	handler   int
	stackSize int
}

// Frame is the interpreter's activation record: the frame IS a State
// (§4.1 "frame is itself a state: its run reads the stored next opcode
// and re-enters the interpreter"). Suspension (generators) makes a
// Frame first-class by wrapping it in a suspension value of type
// SuspensionType (suspension.go); resumption re-enters by reading the
// stored ip and stack back, nothing else changes.
type Frame struct {
	caller types.State
	source string

	chunk *bytecode.Chunk
	ip    int

	stack    []types.Value // addressable slots (locals) + scratch operands
	upvalues []*types.Ref

	result types.Value

	pend      pending
	pendExit  int // for pendIterate/pendNext: loop-exit target
	iterStack []iterCtx
	tryStack  []tryCtx
}

func (*Frame) Type() *types.TypeDescriptor { return FrameType }

// FrameType lets a Frame act as a plain State value when parked as a
// continuation inside another value (e.g. a task waiter).
var FrameType = &types.TypeDescriptor{Name: "frame"}

// NewFrame allocates a frame to execute cl's body, binding args to its
// first len(args) (capped at cl.Info.FrameSize) slots.
func NewFrame(caller types.State, cl *Closure, args []types.Value) *Frame {
	f := &Frame{
		caller:   caller,
		source:   cl.Info.Name,
		chunk:    cl.Chunk,
		ip:       cl.Info.Entry,
		stack:    make([]types.Value, cl.Info.FrameSize),
		upvalues: cl.Upvalues,
		result:   types.Nil,
	}
	for i := range f.stack {
		f.stack[i] = types.Nil
	}
	n := len(args)
	if n > len(f.stack) {
		n = len(f.stack)
	}
	copy(f.stack[:n], args[:n])
	return f
}

func (f *Frame) push(v types.Value) { f.stack = append(f.stack, v) }

func (f *Frame) pop() types.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *Frame) popN(n int) []types.Value {
	out := make([]types.Value, n)
	start := len(f.stack) - n
	copy(out, f.stack[start:])
	f.stack = f.stack[:start]
	return out
}

func (f *Frame) readByte() byte {
	b := f.chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *Frame) readUint16() uint16 {
	n := f.chunk.Code[f.ip]
	f.ip++
	hi := n
	lo := f.chunk.Code[f.ip]
	f.ip++
	return uint16(hi)<<8 | uint16(lo)
}

func (f *Frame) debugInfo() bytecode.DebugInfo {
	return f.chunk.GetDebugInfo(f.ip)
}

func (f *Frame) currentError(kind types.Kind, msg string) *types.Error {
	e := types.NewError(kind, msg)
	dbg := f.debugInfo()
	src := f.source
	if dbg.Source != "" {
		src = dbg.Source
	}
	return e.AddTrace(src, dbg.Line)
}

// Run resumes a parked frame with the result of whatever it was
// waiting on, then drives synchronous dispatch until the next
// suspension point or RETURN (§4.3 "every opcode ... resumes at any
// time").
func (f *Frame) Run(result types.Value) (types.State, types.Value) {
	if f.pend != pendNone && types.IsError(result) {
		return f.propagateOrCatch(result.(*types.Error))
	}
	switch f.pend {
	case pendIterate:
		f.pend = pendNone
		if result == types.Nil {
			f.ip = f.pendExit
		} else {
			f.iterStack = append(f.iterStack, iterCtx{iter: result, exit: f.pendExit})
		}
	case pendNext:
		f.pend = pendNone
		top := &f.iterStack[len(f.iterStack)-1]
		if result == types.Nil {
			f.iterStack = f.iterStack[:len(f.iterStack)-1]
			f.ip = top.exit
		} else {
			top.iter = result
		}
	case pendValue, pendKey:
		f.pend = pendNone
		f.result = result
	case pendCall:
		f.pend = pendNone
		f.result = result
	}
	return f.dispatch()
}

// propagateOrCatch applies the error-propagation policy (§7): without
// a try frame on the stack the error keeps climbing to the caller;
// with one, control transfers to its handler opcode and the stack is
// truncated to the size recorded when TRY was executed.
func (f *Frame) propagateOrCatch(err *types.Error) (types.State, types.Value) {
	f.pend = pendNone
	if len(f.tryStack) == 0 {
		return f.caller, err
	}
	h := f.tryStack[len(f.tryStack)-1]
	f.tryStack = f.tryStack[:len(f.tryStack)-1]
	f.stack = f.stack[:h.stackSize]
	f.ip = h.handler
	f.result = err
	return f.dispatch()
}

// dispatch runs the synchronous opcode loop until a suspension point
// or RETURN is reached, returning the next trampoline transition.
func (f *Frame) dispatch() (types.State, types.Value) {
	for {
		op := bytecode.OpCode(f.readByte())
		switch op {
		case bytecode.OpNil:
			f.result = types.Nil
		case bytecode.OpSome:
			f.result = types.Some
		case bytecode.OpLoad:
			idx := f.readUint16()
			f.result = f.constantValue(int(idx))

		case bytecode.OpPush:
			f.push(f.result)
		case bytecode.OpPop:
			n := int(f.readByte())
			f.stack = f.stack[:len(f.stack)-n]

		case bytecode.OpWith:
			f.push(f.result)
		case bytecode.OpWithVar:
			f.push(types.NewRef(f.result))
		case bytecode.OpWithX:
			n := int(f.readByte())
			vals, errv := unpack(f.result, n)
			if errv != nil {
				f.result = f.currentError(errv.Kind, errv.Message)
				return f.propagateOrCatch(f.result.(*types.Error))
			}
			for _, v := range vals {
				f.push(v)
			}

		case bytecode.OpEnter:
			locals := int(f.readByte())
			uninit := int(f.readByte())
			for i := 0; i < locals; i++ {
				f.push(types.NewRef(types.Nil))
			}
			for i := 0; i < uninit; i++ {
				f.push(types.NewUninitialized())
			}

		case bytecode.OpExit:
			n := int(f.readByte())
			f.stack = f.stack[:len(f.stack)-n]

		case bytecode.OpLocal:
			i := int(f.readByte())
			f.result = f.stack[i]
		case bytecode.OpLocalX:
			i := int(f.readByte())
			if f.stack[i] == types.Nil {
				u := types.NewUninitialized()
				f.stack[i] = u
			}
			f.result = f.stack[i]

		case bytecode.OpVar:
			i := int(f.readByte())
			f.result = types.Assign(f.stack[i], f.result)
		case bytecode.OpVarX:
			i := int(f.readByte())
			n := int(f.readByte())
			vals, errv := unpack(f.result, n)
			if errv != nil {
				return f.propagateOrCatch(f.currentError(errv.Kind, errv.Message))
			}
			for k, v := range vals {
				types.Assign(f.stack[i+k], v)
			}
		case bytecode.OpLet:
			i := int(f.readByte())
			f.stack[i] = f.result
		case bytecode.OpLetI:
			i := int(f.readByte())
			if u, ok := f.stack[i].(*types.Uninitialized); ok {
				u.Resolve(f.result)
			}
			f.stack[i] = f.result
		case bytecode.OpLetX:
			i := int(f.readByte())
			n := int(f.readByte())
			vals, errv := unpack(f.result, n)
			if errv != nil {
				return f.propagateOrCatch(f.currentError(errv.Kind, errv.Message))
			}
			for k, v := range vals {
				if u, ok := f.stack[i+k].(*types.Uninitialized); ok {
					u.Resolve(v)
				}
				f.stack[i+k] = v
			}

		case bytecode.OpIf:
			target := f.readUint16()
			if !types.Truthy(f.result) {
				f.ip = int(target)
			}
		case bytecode.OpElse:
			target := f.readUint16()
			f.ip = int(target)
		case bytecode.OpLoop:
			target := f.readUint16()
			f.ip = int(target)

		case bytecode.OpFor:
			exit := f.readUint16()
			seq := f.pop()
			f.pend = pendIterate
			f.pendExit = int(exit)
			return types.Call(f, seqIterate(seq), nil)

		case bytecode.OpNext:
			exit := f.readUint16()
			top := f.iterStack[len(f.iterStack)-1]
			f.pend = pendNext
			f.pendExit = int(exit)
			td := top.iter.Type()
			if td.Next == nil {
				return f.propagateOrCatch(f.currentError(types.TypeError, "value of type "+td.Name+" is not an iterator"))
			}
			return td.Next(f, top.iter)

		case bytecode.OpValue:
			top := f.iterStack[len(f.iterStack)-1]
			f.pend = pendValue
			td := top.iter.Type()
			return td.Value(f, top.iter)

		case bytecode.OpKey:
			top := f.iterStack[len(f.iterStack)-1]
			f.pend = pendKey
			td := top.iter.Type()
			return td.Key(f, top.iter)

		case bytecode.OpCall:
			n := int(f.readByte())
			args := f.popN(n)
			fn := f.pop()
			return f.doCall(fn, args)

		case bytecode.OpConstCall:
			n := int(f.readByte())
			idx := f.readUint16()
			args := f.popN(n)
			fn := f.constantValue(int(idx))
			return f.doCall(fn, args)

		case bytecode.OpAssign:
			ref := f.pop()
			f.result = types.Assign(ref, types.Deref(f.result))

		case bytecode.OpTry:
			handler := f.readUint16()
			f.tryStack = append(f.tryStack, tryCtx{handler: int(handler), stackSize: len(f.stack)})
		case bytecode.OpCatch:
			stackBase := int(f.readUint16())
			e, ok := f.result.(*types.Error)
			if !ok || !e.Propagating {
				return f.propagateOrCatch(f.currentError(types.InternalError, "catch opcode without error on result"))
			}
			e.Propagating = false
			f.stack = f.stack[:stackBase]
			f.push(e)

		case bytecode.OpTupleNew:
			n := int(f.readByte())
			f.result = container.NewTuple(n)
		case bytecode.OpTupleSet:
			i := int(f.readByte())
			t := f.pop()
			t.(*container.Tuple).Set(i, f.result)
			f.result = t

		case bytecode.OpListNew:
			f.result = container.NewList()
		case bytecode.OpListAppend:
			l := f.pop()
			l.(*container.List).Append(f.result)
			f.result = l

		case bytecode.OpMapNew:
			f.result = container.NewMap()
		case bytecode.OpMapInsert:
			key := f.pop()
			m := f.pop()
			m.(*container.Map).Insert(key, f.result)
			f.result = m

		case bytecode.OpPartialNew:
			n := int(f.readByte())
			fn := f.pop()
			f.result = types.NewPartial(fn, n)
		case bytecode.OpPartialSet:
			i := int(f.readByte())
			p := f.pop()
			p.(*types.Partial).Set(i, f.result)
			f.result = p

		case bytecode.OpClosure:
			f.result = f.buildClosure()

		case bytecode.OpSuspend:
			return f.caller, f.suspend()
		case bytecode.OpResume:
			f.pop() // discard top-of-stack value (§4.2 "RESUME")

		case bytecode.OpReturn:
			return f.caller, f.result

		default:
			return f.propagateOrCatch(f.currentError(types.InternalError, "unknown opcode"))
		}
	}
}

func (f *Frame) constantValue(idx int) types.Value {
	c := f.chunk.Constants[idx]
	if v, ok := c.(types.Value); ok {
		return v
	}
	return types.Nil
}

// doCall implements the tail-call transform (§8 invariant 9): when the
// instruction immediately following this call is RETURN, the current
// frame is dropped and the callee resumes directly into our caller.
func (f *Frame) doCall(fn types.Value, args []types.Value) (types.State, types.Value) {
	tail := f.ip < len(f.chunk.Code) && bytecode.OpCode(f.chunk.Code[f.ip]) == bytecode.OpReturn
	if tail {
		return types.Call(f.caller, fn, args)
	}
	f.pend = pendCall
	return types.Call(f, fn, args)
}

// seqIterate wraps a value whose type exposes Iterate so FOR can start
// iteration through the same types.Call machinery doCall uses. The
// proxy is callable, not iterable: its Call delegates straight to the
// wrapped value's Iterate.
type iterableProxy struct{ v types.Value }

func (p iterableProxy) Type() *types.TypeDescriptor { return iterableProxyType }

var iterableProxyType = &types.TypeDescriptor{Name: "iterable-proxy"}

func init() {
	iterableProxyType.Call = func(caller types.State, self types.Value, _ []types.Value) (types.State, types.Value) {
		p := self.(iterableProxy)
		td := p.v.Type()
		if td.Iterate == nil {
			return caller, types.NewError(types.TypeError, "value of type "+td.Name+" is not iterable")
		}
		return td.Iterate(caller, p.v)
	}
}

func seqIterate(v types.Value) types.Value { return iterableProxy{v: v} }

// buildClosure reads a CLOSURE instruction's operands: a constant-pool
// index for the shared ClosureInfo, a count of upvalues, then that many
// (isLocal, index) pairs (§4.1 "Closure", §4.2 "CLOSURE").
func (f *Frame) buildClosure() *Closure {
	infoIdx := f.readUint16()
	info := f.chunk.Constants[infoIdx].(*bytecode.ClosureInfo)
	n := int(f.readByte())
	ups := make([]*types.Ref, n)
	for i := 0; i < n; i++ {
		isLocal := f.readByte() != 0
		idx := int(f.readByte())
		if isLocal {
			ups[i] = f.captureLocal(idx)
		} else {
			ups[i] = f.upvalues[idx]
		}
	}
	return &Closure{Info: info, Chunk: f.chunk, Upvalues: ups}
}

// captureLocal wraps slot idx as a shared cell. If the slot currently
// holds an Uninitialized placeholder, a patch is registered so the
// closure's captured cell updates in place once the forward reference
// resolves (§4.2 "CLOSURE... register a patch").
func (f *Frame) captureLocal(idx int) *types.Ref {
	v := f.stack[idx]
	switch x := v.(type) {
	case *types.Ref:
		return x
	case *types.Uninitialized:
		cell := types.NewRef(types.Nil)
		x.Patch(func(val types.Value) { cell.Slot = val })
		return cell
	default:
		return types.NewRef(v)
	}
}

// unpack drives a value's iteration protocol synchronously to collect
// n values, for WITHX/VARX/LETX. A genuinely suspending producer will
// not be correctly awaited here — see DESIGN.md, same tradeoff as
// Map.Sort's comparator.
func unpack(v types.Value, n int) ([]types.Value, *types.Error) {
	if tup, ok := v.(*container.Tuple); ok {
		if tup.Size() < n {
			return nil, types.NewError(types.ValueError, fmt.Sprintf("not enough values to unpack (%d < %d)", tup.Size(), n))
		}
		out := make([]types.Value, n)
		for i := 0; i < n; i++ {
			out[i] = tup.Get(i + 1)
		}
		return out, nil
	}
	td := v.Type()
	if td.Iterate == nil {
		return nil, types.NewError(types.TypeError, "value of type "+td.Name+" cannot be unpacked")
	}
	cur := types.Drive(td.Iterate(types.Terminal, v))
	out := make([]types.Value, 0, n)
	for i := 0; i < n; i++ {
		if cur == types.Nil {
			return nil, types.NewError(types.ValueError, fmt.Sprintf("not enough values to unpack (%d < %d)", i, n))
		}
		itd := cur.Type()
		val := types.Drive(itd.Value(types.Terminal, cur))
		out = append(out, val)
		cur = types.Drive(itd.Next(types.Terminal, cur))
	}
	return out, nil
}
