// Package iterate implements the adapters of §4.4: combinators that
// wrap one or more sequences and expose the same four-call protocol
// (iterate/next/key/value) themselves, so they compose without the
// consumer needing to know it is looking at a derived sequence rather
// than a primitive one.
package iterate

import (
	"sentracore/internal/container"
	"sentracore/internal/types"
)

// Iterate/Next/Key/Value dispatch the four-call protocol uniformly,
// the same helper every adapter below is built from.
func Iterate(caller types.State, v types.Value) (types.State, types.Value) {
	td := v.Type()
	if td.Iterate == nil {
		return caller, types.NewError(types.TypeError, "value of type "+td.Name+" is not iterable")
	}
	return td.Iterate(caller, v)
}

func Next(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Next(caller, v)
}

func Key(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Key(caller, v)
}

func Value(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Value(caller, v)
}

// ---------------------------------------------------------------------
// limited(seq, n) — stops after n keys have been produced.

var LimitedType = &types.TypeDescriptor{Name: "limited"}

type Limited struct {
	seq types.Value
	n   int64
}

func (*Limited) Type() *types.TypeDescriptor { return LimitedType }

func NewLimited(seq types.Value, n int64) *Limited { return &Limited{seq: seq, n: n} }

var limitedIterType = &types.TypeDescriptor{Name: "limited-iterator"}

type limitedIter struct {
	sub  types.Value
	left int64
}

func (*limitedIter) Type() *types.TypeDescriptor { return limitedIterType }

func init() {
	LimitedType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		l := self.(*Limited)
		if l.n <= 0 {
			return caller, types.Nil
		}
		n := l.n
		return Iterate(&limitedBegin{caller: caller, n: n}, l.seq)
	}
	limitedIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*limitedIter)
		if it.left <= 1 {
			return caller, types.Nil
		}
		left := it.left
		return Next(&limitedBegin{caller: caller, n: left - 1}, it.sub)
	}
	limitedIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return Key(caller, self.(*limitedIter).sub)
	}
	limitedIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return Value(caller, self.(*limitedIter).sub)
	}
}

type limitedBegin struct {
	caller types.State
	n      int64
}

func (b *limitedBegin) Run(result types.Value) (types.State, types.Value) {
	if result == types.Nil {
		return b.caller, types.Nil
	}
	return b.caller, &limitedIter{sub: result, left: b.n}
}

// ---------------------------------------------------------------------
// skipped(seq, n) — discards the first n keys transparently.

var SkippedType = &types.TypeDescriptor{Name: "skipped"}

type Skipped struct {
	seq types.Value
	n   int64
}

func (*Skipped) Type() *types.TypeDescriptor { return SkippedType }

func NewSkipped(seq types.Value, n int64) *Skipped { return &Skipped{seq: seq, n: n} }

var skippedIterType = &types.TypeDescriptor{Name: "skipped-iterator"}

type skippedIter struct{ sub types.Value }

func (*skippedIter) Type() *types.TypeDescriptor { return skippedIterType }

type skipAdvance struct {
	caller   types.State
	skipLeft int64
}

func (s *skipAdvance) Run(result types.Value) (types.State, types.Value) {
	if result == types.Nil {
		return s.caller, types.Nil
	}
	if s.skipLeft <= 0 {
		return s.caller, &skippedIter{sub: result}
	}
	return Next(&skipAdvance{caller: s.caller, skipLeft: s.skipLeft - 1}, result)
}

func init() {
	SkippedType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		sk := self.(*Skipped)
		return Iterate(&skipAdvance{caller: caller, skipLeft: sk.n}, sk.seq)
	}
	skippedIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*skippedIter)
		return Next(&wrapIter{caller: caller}, it.sub)
	}
	skippedIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return Key(caller, self.(*skippedIter).sub)
	}
	skippedIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return Value(caller, self.(*skippedIter).sub)
	}
}

// wrapIter re-boxes a bare sub-iterator result as the adapter's own
// iterator value (or forwards Nil untouched), for adapters that do
// nothing but pass an already-positioned sub-iterator through.
type wrapIter struct{ caller types.State }

func (w *wrapIter) Run(result types.Value) (types.State, types.Value) {
	if result == types.Nil {
		return w.caller, types.Nil
	}
	return w.caller, &skippedIter{sub: result}
}

// ---------------------------------------------------------------------
// unique(seq) — yields values not seen before; keys are 1-based
// position counters.

var UniqueType = &types.TypeDescriptor{Name: "unique"}

type Unique struct{ seq types.Value }

func (*Unique) Type() *types.TypeDescriptor { return UniqueType }

func NewUnique(seq types.Value) *Unique { return &Unique{seq: seq} }

var uniqueIterType = &types.TypeDescriptor{Name: "unique-iterator"}

type uniqueIter struct {
	sub   types.Value
	seen  *container.Map
	pos   int64
	value types.Value
}

func (*uniqueIter) Type() *types.TypeDescriptor { return uniqueIterType }

type uniqueSeek struct {
	caller types.State
	seen   *container.Map
	pos    int64
}

func (s *uniqueSeek) Run(result types.Value) (types.State, types.Value) {
	if result == types.Nil {
		return s.caller, types.Nil
	}
	return Value(&uniqueCheck{caller: s.caller, seen: s.seen, pos: s.pos, sub: result}, result)
}

type uniqueCheck struct {
	caller types.State
	seen   *container.Map
	pos    int64
	sub    types.Value
}

func (c *uniqueCheck) Run(value types.Value) (types.State, types.Value) {
	marker := types.Int{V: 1}
	if c.seen.Search(value) != types.Nil {
		return Next(&uniqueSeek{caller: c.caller, seen: c.seen, pos: c.pos}, c.sub)
	}
	c.seen.Insert(value, marker)
	pos := c.pos + 1
	return c.caller, &uniqueIter{sub: c.sub, seen: c.seen, pos: pos, value: value}
}

func init() {
	UniqueType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		u := self.(*Unique)
		seen := container.NewMap()
		return Iterate(&uniqueSeek{caller: caller, seen: seen, pos: 0}, u.seq)
	}
	uniqueIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*uniqueIter)
		return Next(&uniqueSeek{caller: caller, seen: it.seen, pos: it.pos}, it.sub)
	}
	uniqueIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, types.Int{V: self.(*uniqueIter).pos}
	}
	uniqueIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, self.(*uniqueIter).value
	}
}

// ---------------------------------------------------------------------
// repeated(v, fn) — infinite; value starts at v, next value is fn(current).

var RepeatedType = &types.TypeDescriptor{Name: "repeated"}

type Repeated struct {
	start types.Value
	fn    types.Value
}

func (*Repeated) Type() *types.TypeDescriptor { return RepeatedType }

func NewRepeated(start, fn types.Value) *Repeated { return &Repeated{start: start, fn: fn} }

var repeatedIterType = &types.TypeDescriptor{Name: "repeated-iterator"}

type repeatedIter struct {
	fn      types.Value
	current types.Value
	pos     int64
}

func (*repeatedIter) Type() *types.TypeDescriptor { return repeatedIterType }

func init() {
	RepeatedType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		r := self.(*Repeated)
		return caller, &repeatedIter{fn: r.fn, current: r.start, pos: 1}
	}
	repeatedIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*repeatedIter)
		return types.Call(&repeatedAdvance{caller: caller, fn: it.fn, pos: it.pos + 1}, it.fn, []types.Value{it.current})
	}
	repeatedIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, types.Int{V: self.(*repeatedIter).pos}
	}
	repeatedIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, self.(*repeatedIter).current
	}
}

type repeatedAdvance struct {
	caller types.State
	fn     types.Value
	pos    int64
}

func (a *repeatedAdvance) Run(result types.Value) (types.State, types.Value) {
	return a.caller, &repeatedIter{fn: a.fn, current: result, pos: a.pos}
}

// ---------------------------------------------------------------------
// sequenced(a, b) — concatenation; unary form is infinite
// self-repetition.

var SequencedType = &types.TypeDescriptor{Name: "sequenced"}

type Sequenced struct {
	a, b types.Value // b == nil means the unary, self-repeating form
}

func (*Sequenced) Type() *types.TypeDescriptor { return SequencedType }

func NewSequenced(a, b types.Value) *Sequenced { return &Sequenced{a: a, b: b} }

var sequencedIterType = &types.TypeDescriptor{Name: "sequenced-iterator"}

type sequencedIter struct {
	s         *Sequenced
	sub       types.Value
	onSecond  bool
}

func (*sequencedIter) Type() *types.TypeDescriptor { return sequencedIterType }

type sequencedBegin struct {
	caller   types.State
	s        *Sequenced
	onSecond bool
}

func (b *sequencedBegin) Run(result types.Value) (types.State, types.Value) {
	if result == types.Nil {
		switch {
		case b.s.b == nil:
			// Unary form: infinite self-repetition, restart a forever.
			return Iterate(&sequencedBegin{caller: b.caller, s: b.s}, b.s.a)
		case !b.onSecond:
			return Iterate(&sequencedBegin{caller: b.caller, s: b.s, onSecond: true}, b.s.b)
		default:
			return b.caller, types.Nil
		}
	}
	return b.caller, &sequencedIter{s: b.s, sub: result, onSecond: b.onSecond}
}

func init() {
	SequencedType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		s := self.(*Sequenced)
		return Iterate(&sequencedBegin{caller: caller, s: s}, s.a)
	}
	sequencedIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*sequencedIter)
		return Next(&sequencedBegin{caller: caller, s: it.s, onSecond: it.onSecond}, it.sub)
	}
	sequencedIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return Key(caller, self.(*sequencedIter).sub)
	}
	sequencedIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return Value(caller, self.(*sequencedIter).sub)
	}
}

// ---------------------------------------------------------------------
// grouped(seq_1, ..., seq_k, fn) — lockstep advance; yields
// fn(v_1, ..., v_k); terminates on the first sub-iterator to exhaust.

var GroupedType = &types.TypeDescriptor{Name: "grouped"}

type Grouped struct {
	seqs []types.Value
	fn   types.Value
}

func (*Grouped) Type() *types.TypeDescriptor { return GroupedType }

func NewGrouped(seqs []types.Value, fn types.Value) *Grouped { return &Grouped{seqs: seqs, fn: fn} }

var groupedIterType = &types.TypeDescriptor{Name: "grouped-iterator"}

type groupedIter struct {
	subs  []types.Value
	fn    types.Value
	pos   int64
	value types.Value
}

func (*groupedIter) Type() *types.TypeDescriptor { return groupedIterType }

// groupedFan tracks n sub-operations (iterate or next) in lockstep and,
// once every one has replied, either stops at the first exhausted
// member or hands the full set of resulting positions on to
// groupedCombine.
type groupedFan struct {
	caller  types.State
	fn      types.Value
	pos     int64
	results []types.Value
	pending int
	done    bool
}

// fanOut runs each branch as far as it will go without ever invoking
// caller itself: driveUntil stops the moment a branch's chain would
// hand its result to caller, so the (state, value) pair it captures is
// still in tail position for whatever drove the original Iterate/Next
// call — the same convention every synchronous adapter in this file
// relies on. A branch that parks before reaching caller leaves no such
// pair behind; its eventual real completion (arriving later through a
// scheduler, outside this function entirely) reaches caller directly,
// since nothing here intercepts it.
func fanOut(caller types.State, pos int64, fn types.Value, subs []types.Value, op func(types.State, types.Value) (types.State, types.Value)) (types.State, types.Value) {
	if len(subs) == 0 {
		return caller, types.Nil
	}
	fan := &groupedFan{caller: caller, fn: fn, pos: pos, results: make([]types.Value, len(subs)), pending: len(subs)}
	for i, sub := range subs {
		s, v := op(&groupedSlot{fan: fan, index: i}, sub)
		s, v = driveUntil(caller, s, v)
		if s != nil {
			return s, v
		}
		if fan.done {
			break
		}
	}
	return nil, types.Nil
}

// driveUntil steps a CPS chain forward exactly like types.Drive, except
// it stops and hands back the pair (rather than invoking it) the
// instant the chain is about to call target.
func driveUntil(target types.State, s types.State, v types.Value) (types.State, types.Value) {
	for s != nil && s != target {
		s, v = s.Run(v)
	}
	return s, v
}

type groupedSlot struct {
	fan   *groupedFan
	index int
}

func (g *groupedSlot) Run(result types.Value) (types.State, types.Value) {
	fan := g.fan
	if fan.done {
		return nil, types.Nil
	}
	fan.results[g.index] = result
	fan.pending--
	if result == types.Nil {
		fan.done = true
		return fan.caller, types.Nil
	}
	if fan.pending == 0 {
		fan.done = true
		return groupedCombine(fan.caller, fan.fn, fan.pos, fan.results)
	}
	return nil, types.Nil
}

func groupedCombine(caller types.State, fn types.Value, pos int64, subs []types.Value) (types.State, types.Value) {
	vals := make([]types.Value, len(subs))
	return Value(&groupedValueCollect{caller: caller, fn: fn, pos: pos, subs: subs, vals: vals, i: 0}, subs[0])
}

type groupedValueCollect struct {
	caller types.State
	fn     types.Value
	pos    int64
	subs   []types.Value
	vals   []types.Value
	i      int
}

func (c *groupedValueCollect) Run(result types.Value) (types.State, types.Value) {
	c.vals[c.i] = result
	c.i++
	if c.i < len(c.subs) {
		return Value(c, c.subs[c.i])
	}
	return types.Call(&groupedApplied{caller: c.caller, fn: c.fn, pos: c.pos, subs: c.subs}, c.fn, c.vals)
}

type groupedApplied struct {
	caller types.State
	fn     types.Value
	pos    int64
	subs   []types.Value
}

func (a *groupedApplied) Run(result types.Value) (types.State, types.Value) {
	return a.caller, &groupedIter{subs: a.subs, fn: a.fn, pos: a.pos, value: result}
}

func init() {
	GroupedType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		g := self.(*Grouped)
		return fanOut(caller, 1, g.fn, g.seqs, Iterate)
	}
	groupedIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*groupedIter)
		return fanOut(caller, it.pos+1, it.fn, it.subs, Next)
	}
	groupedIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, types.Int{V: self.(*groupedIter).pos}
	}
	groupedIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, self.(*groupedIter).value
	}
}
