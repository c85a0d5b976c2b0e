package container

import (
	"strings"

	"sentracore/internal/types"
)

// TupleType is the fixed-arity immutable value vector produced by
// TUPLE_NEW/TUPLE_SET (§4.2, §3 "Tuple").
var TupleType = &types.TypeDescriptor{Name: "tuple"}

type Tuple struct {
	Values []types.Value
}

func (*Tuple) Type() *types.TypeDescriptor { return TupleType }

// NewTuple allocates a tuple of the given arity with every slot Nil,
// ready for TUPLE_SET to fill in by index.
func NewTuple(arity int) *Tuple {
	vs := make([]types.Value, arity)
	for i := range vs {
		vs[i] = types.Nil
	}
	return &Tuple{Values: vs}
}

func (t *Tuple) Size() int { return len(t.Values) }

// Set writes the 1-based slot i; out-of-range writes are ignored, since
// the bytecode compiler only ever emits in-range TUPLE_SET indices.
func (t *Tuple) Set(i int, v types.Value) {
	if i >= 1 && i <= len(t.Values) {
		t.Values[i-1] = v
	}
}

func (t *Tuple) Get(i int) types.Value {
	if i < 1 || i > len(t.Values) {
		return types.Nil
	}
	return t.Values[i-1]
}

func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range t.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ToDisplayString(v))
	}
	sb.WriteByte(')')
	return sb.String()
}

type tupleIter struct {
	t   *Tuple
	pos int // 0-based
}

var tupleIterType = &types.TypeDescriptor{Name: "tuple-iterator"}

func (*tupleIter) Type() *types.TypeDescriptor { return tupleIterType }

func init() {
	TupleType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		t := self.(*Tuple)
		if len(t.Values) == 0 {
			return caller, types.Nil
		}
		return caller, &tupleIter{t: t, pos: 0}
	}
	tupleIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*tupleIter)
		if it.pos+1 >= len(it.t.Values) {
			return caller, types.Nil
		}
		return caller, &tupleIter{t: it.t, pos: it.pos + 1}
	}
	tupleIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, types.Int{V: int64(self.(*tupleIter).pos + 1)}
	}
	tupleIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*tupleIter)
		return caller, it.t.Values[it.pos]
	}

	TupleType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		t := self.(*Tuple)
		if len(args) < 1 {
			return caller, types.NewError(types.ValueError, "tuple index requires an argument")
		}
		idx, ok := types.Deref(args[0]).(types.Int)
		if !ok {
			return caller, types.NewError(types.TypeError, "tuple index must be an integer")
		}
		return caller, t.Get(int(idx.V))
	}
	TupleType.Hash = func(v types.Value, chain *types.HashChain) uint64 {
		t := v.(*Tuple)
		next, cyclic := chain.Enter(v)
		if cyclic {
			return 0
		}
		var h uint64 = 0x100000001b3
		for _, sub := range t.Values {
			h = h*1099511628211 ^ hashWith(sub, next)
		}
		return h
	}
	TupleType.Compare = func(a, b types.Value) int {
		x, y := a.(*Tuple), b.(*Tuple)
		n := len(x.Values)
		if len(y.Values) < n {
			n = len(y.Values)
		}
		for i := 0; i < n; i++ {
			if c := compareValues(x.Values[i], y.Values[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(x.Values) == len(y.Values):
			return 0
		case len(x.Values) < len(y.Values):
			return -1
		default:
			return 1
		}
	}
}
