package task

import (
	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

// BufferedType is the sequence produced by §4.6 "buffered": a new
// sequence of (k_i, fn(k_i, v_i)) pairs, with up to Size applications
// of fn overlapping in flight while the original order is preserved.
// Buffered plays both roles a sequence needs — producer and its own
// iterator — since it is inherently a one-shot wrapper over seq.
var BufferedType = &types.TypeDescriptor{Name: "buffered"}

type bufferedEntry struct {
	ready   bool
	key     types.Value
	value   types.Value
	waiting types.State
}

type Buffered struct {
	sched *schedule.Scheduler
	seq   types.Value
	size  int
	fn    types.Value

	entries []bufferedEntry
	use     int // count of source items whose fn call has been launched
	fetch   int // count of entries delivered to the consumer so far
	current int // slot index of the most recently delivered entry

	sourceIter types.Value
	sourceDone bool
	pulling    bool
}

func (*Buffered) Type() *types.TypeDescriptor { return BufferedType }

func NewBuffered(sched *schedule.Scheduler, seq types.Value, size int, fn types.Value) *Buffered {
	return &Buffered{sched: sched, seq: seq, size: size, fn: fn, entries: make([]bufferedEntry, size)}
}

func init() {
	BufferedType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		b := self.(*Buffered)
		b.fill()
		return b.advance(caller)
	}
	BufferedType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		return self.(*Buffered).advance(caller)
	}
	BufferedType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		b := self.(*Buffered)
		return caller, b.entries[b.current].key
	}
	BufferedType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		b := self.(*Buffered)
		return caller, b.entries[b.current].value
	}
}

// advance delivers the next ready entry, or parks the caller until one
// arrives, or reports exhaustion once the source is done and every
// launched entry has been delivered.
func (b *Buffered) advance(caller types.State) (types.State, types.Value) {
	b.fill()
	if b.sourceDone && b.fetch >= b.use {
		return caller, types.Nil
	}
	slot := b.fetch % b.size
	if b.entries[slot].ready {
		b.consume(slot)
		return caller, b
	}
	b.entries[slot].waiting = caller
	return nil, types.Nil
}

func (b *Buffered) consume(slot int) {
	b.current = slot
	b.fetch++
}

// fill keeps up to Size source items in flight: it pulls the next item
// off the source sequentially (the source itself can only be advanced
// one step at a time) and fires its fn call without waiting for it.
func (b *Buffered) fill() {
	if b.pulling || b.sourceDone {
		return
	}
	if b.use-b.fetch >= b.size {
		return
	}
	b.pulling = true
	if b.sourceIter == nil {
		s, v := callIterate(&bufferedPull{b: b, phase: phaseIterate}, b.seq)
		types.Drive(s, v)
		return
	}
	s, v := callNext(&bufferedPull{b: b, phase: phaseNext}, b.sourceIter)
	types.Drive(s, v)
}

type bufferedPull struct {
	b   *Buffered
	phase parallelPhase
	key types.Value
}

func (p *bufferedPull) Run(result types.Value) (types.State, types.Value) {
	b := p.b
	switch p.phase {
	case phaseIterate, phaseNext:
		if result == types.Nil {
			b.sourceDone = true
			b.pulling = false
			b.wakeIfExhausted()
			return nil, types.Nil
		}
		b.sourceIter = result
		return callKey(&bufferedPull{b: b, phase: phaseKey}, b.sourceIter)
	case phaseKey:
		return callValue(&bufferedPull{b: b, phase: phaseValue, key: result}, b.sourceIter)
	case phaseValue:
		key, value := p.key, result
		slot := b.use % b.size
		b.use++
		b.pulling = false
		b.entries[slot].ready = false
		cs, cv := types.Call(&bufferedChildWaiter{b: b, slot: slot, key: key}, b.fn, []types.Value{key, value})
		types.Drive(cs, cv)
		b.fill()
		return nil, types.Nil
	}
	return nil, types.Nil
}

type bufferedChildWaiter struct {
	b    *Buffered
	slot int
	key  types.Value
}

func (w *bufferedChildWaiter) Run(result types.Value) (types.State, types.Value) {
	b := w.b
	e := &b.entries[w.slot]
	e.ready = true
	e.key = w.key
	e.value = result
	if e.waiting != nil {
		waiter := e.waiting
		e.waiting = nil
		b.consume(w.slot)
		b.sched.Schedule(waiter, b)
	}
	return nil, types.Nil
}

// wakeIfExhausted resumes any consumer parked on a slot that will
// never fill because the source ran out first.
func (b *Buffered) wakeIfExhausted() {
	if b.fetch < b.use {
		return
	}
	slot := b.fetch % b.size
	if e := &b.entries[slot]; e.waiting != nil {
		waiter := e.waiting
		e.waiting = nil
		b.sched.Schedule(waiter, types.Nil)
	}
}
