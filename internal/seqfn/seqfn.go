// Package seqfn implements the reducers of §4.4: terminal operations
// that drain a sequence through the iterate/next/key/value protocol and
// fold it down to a single core value.
package seqfn

import (
	"sentracore/internal/container"
	"sentracore/internal/types"
)

func iterateOf(caller types.State, v types.Value) (types.State, types.Value) {
	td := v.Type()
	if td.Iterate == nil {
		return caller, types.NewError(types.TypeError, "value of type "+td.Name+" is not iterable")
	}
	return td.Iterate(caller, v)
}

func nextOf(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Next(caller, v)
}

func keyOf(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Key(caller, v)
}

func valueOf(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Value(caller, v)
}

// ---------------------------------------------------------------------
// all(seq) — accumulates values into a list.

var All = types.NewBuiltin("all", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	if len(args) != 1 {
		return caller, types.NewError(types.TypeError, "all takes exactly one argument")
	}
	out := container.NewList()
	return iterateOf(&allStep{caller: caller, out: out}, args[0])
})

type allStep struct {
	caller types.State
	out    *container.List
}

func (s *allStep) Run(it types.Value) (types.State, types.Value) {
	if it == types.Nil {
		return s.caller, s.out
	}
	return valueOf(&allCollect{caller: s.caller, out: s.out, it: it}, it)
}

type allCollect struct {
	caller types.State
	out    *container.List
	it     types.Value
}

func (c *allCollect) Run(value types.Value) (types.State, types.Value) {
	c.out.Put(types.Deref(value))
	return nextOf(&allStep{caller: c.caller, out: c.out}, c.it)
}

// ---------------------------------------------------------------------
// map(seq) — accumulates (key, value) pairs into a map, deref on value.

var MapReduce = types.NewBuiltin("map", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	if len(args) != 1 {
		return caller, types.NewError(types.TypeError, "map takes exactly one argument")
	}
	out := container.NewMap()
	return iterateOf(&mapStep{caller: caller, out: out}, args[0])
})

type mapStep struct {
	caller types.State
	out    *container.Map
}

func (s *mapStep) Run(it types.Value) (types.State, types.Value) {
	if it == types.Nil {
		return s.caller, s.out
	}
	return keyOf(&mapKeyed{caller: s.caller, out: s.out, it: it}, it)
}

type mapKeyed struct {
	caller types.State
	out    *container.Map
	it     types.Value
}

func (k *mapKeyed) Run(key types.Value) (types.State, types.Value) {
	return valueOf(&mapCollect{caller: k.caller, out: k.out, it: k.it, key: key}, k.it)
}

type mapCollect struct {
	caller types.State
	out    *container.Map
	it     types.Value
	key    types.Value
}

func (c *mapCollect) Run(value types.Value) (types.State, types.Value) {
	c.out.Insert(c.key, types.Deref(value))
	return nextOf(&mapStep{caller: c.caller, out: c.out}, c.it)
}

// ---------------------------------------------------------------------
// count(seq) — counts yielded values.

var Count = types.NewBuiltin("count", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	if len(args) != 1 {
		return caller, types.NewError(types.TypeError, "count takes exactly one argument")
	}
	return iterateOf(&countStep{caller: caller, n: 0}, args[0])
})

type countStep struct {
	caller types.State
	n      int64
}

func (s *countStep) Run(it types.Value) (types.State, types.Value) {
	if it == types.Nil {
		return s.caller, types.Int{V: s.n}
	}
	return nextOf(&countStep{caller: s.caller, n: s.n + 1}, it)
}

// ---------------------------------------------------------------------
// fold(seq, fn) — initial element is the first value; the accumulator
// is replaced only when fn(acc, v) returns non-nil. Empty sequences
// fold to Nil; a single-element sequence folds to that element, since
// fn is never invoked until a second value arrives.

var Fold = types.NewBuiltin("fold", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	if len(args) != 2 {
		return caller, types.NewError(types.TypeError, "fold takes exactly two arguments")
	}
	seq, fn := args[0], args[1]
	return iterateOf(&foldStart{caller: caller, fn: fn}, seq)
})

type foldStart struct {
	caller types.State
	fn     types.Value
}

func (s *foldStart) Run(it types.Value) (types.State, types.Value) {
	if it == types.Nil {
		return s.caller, types.Nil
	}
	return valueOf(&foldSeed{caller: s.caller, fn: s.fn, it: it}, it)
}

type foldSeed struct {
	caller types.State
	fn     types.Value
	it     types.Value
}

func (s *foldSeed) Run(value types.Value) (types.State, types.Value) {
	acc := types.Deref(value)
	return nextOf(&foldStep{caller: s.caller, fn: s.fn, acc: acc, it: s.it}, s.it)
}

type foldStep struct {
	caller types.State
	fn     types.Value
	acc    types.Value
	it     types.Value
}

func (s *foldStep) Run(it types.Value) (types.State, types.Value) {
	if it == types.Nil {
		return s.caller, s.acc
	}
	return valueOf(&foldApply{caller: s.caller, fn: s.fn, acc: s.acc, it: it}, it)
}

type foldApply struct {
	caller types.State
	fn     types.Value
	acc    types.Value
	it     types.Value
}

func (a *foldApply) Run(value types.Value) (types.State, types.Value) {
	value = types.Deref(value)
	return types.Call(&foldApplied{caller: a.caller, fn: a.fn, acc: a.acc, it: a.it}, a.fn, []types.Value{a.acc, value})
}

type foldApplied struct {
	caller types.State
	fn     types.Value
	acc    types.Value
	it     types.Value
}

func (r *foldApplied) Run(result types.Value) (types.State, types.Value) {
	acc := r.acc
	if result != types.Nil {
		acc = result
	}
	return nextOf(&foldStep{caller: r.caller, fn: r.fn, acc: acc, it: r.it}, r.it)
}

// ---------------------------------------------------------------------
// min/max/sum/prod — instances of fold seeded by the first element,
// reducing with <, >, +, * respectively.

var Min = types.NewBuiltin("min", foldWith(minFn))
var Max = types.NewBuiltin("max", foldWith(maxFn))
var Sum = types.NewBuiltin("sum", foldWith(plusFn))
var Prod = types.NewBuiltin("prod", foldWith(timesFn))

func foldWith(fn *types.Builtin) types.CallFn {
	return func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		if len(args) != 1 {
			return caller, types.NewError(types.TypeError, "reducer takes exactly one argument")
		}
		return iterateOf(&foldStart{caller: caller, fn: fn}, args[0])
	}
}

func compareValues(a, b types.Value) int {
	td := a.Type()
	if td.Compare == nil {
		return 0
	}
	return td.Compare(a, b)
}

// minFn/maxFn implement fold's (acc, v) -> replacement-or-nil contract:
// the accumulator is replaced by v exactly when v is strictly smaller
// (min) or larger (max) than the running value.
var minFn = types.NewBuiltin("<", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	if compareValues(args[1], args[0]) < 0 {
		return caller, args[1]
	}
	return caller, types.Nil
})

var maxFn = types.NewBuiltin(">", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	if compareValues(args[1], args[0]) > 0 {
		return caller, args[1]
	}
	return caller, types.Nil
})

var plusFn = types.NewBuiltin("+", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	return caller, types.Add(args[0], args[1])
})

var timesFn = types.NewBuiltin("*", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	return caller, types.Mul(args[0], args[1])
})
