package task

import (
	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

// Parallel drives a sequence and calls fn(k, v) for each pair without
// awaiting it (§4.6 "parallel"): source items are pulled one at a time
// (iteration is inherently sequential), but the fn calls they trigger
// run unawaited and may still be in flight when the next item is
// pulled, bounded by two thresholds — keep pulling while NumRunning is
// at most Max, pause once it would exceed Max, and only resume pulling
// once completions bring NumRunning back down to Burst.
type Parallel struct {
	sched *schedule.Scheduler
	seq   types.Value
	max   int
	burst int
	fn    types.Value

	it         types.Value
	numRunning int
	paused     bool
	exhausted  bool
	failed     types.Value
	owner      types.State
	ownerDone  bool
}

func NewParallel(sched *schedule.Scheduler, seq types.Value, max, burst int, fn types.Value) *Parallel {
	return &Parallel{sched: sched, seq: seq, max: max, burst: burst, fn: fn}
}

// Start begins driving the source; owner is resumed, via the
// scheduler, with Nil once every pulled item's fn call has completed
// and the source is exhausted, or with the first error any fn call
// reports.
func (p *Parallel) Start(owner types.State) {
	p.owner = owner
	s, v := callIterate(&pstep{p: p, phase: phaseIterate}, p.seq)
	types.Drive(s, v)
}

type parallelPhase int

const (
	phaseIterate parallelPhase = iota
	phaseKey
	phaseValue
	phaseNext
)

type pstep struct {
	p     *Parallel
	phase parallelPhase
	key   types.Value
}

func (s *pstep) Run(result types.Value) (types.State, types.Value) {
	p := s.p
	switch s.phase {
	case phaseIterate, phaseNext:
		if result == types.Nil {
			p.exhausted = true
			p.checkDone()
			return nil, types.Nil
		}
		p.it = result
		return callKey(&pstep{p: p, phase: phaseKey}, p.it)
	case phaseKey:
		return callValue(&pstep{p: p, phase: phaseValue, key: result}, p.it)
	case phaseValue:
		key, value := s.key, result
		p.numRunning++
		cs, cv := types.Call(&parallelChildWaiter{p: p}, p.fn, []types.Value{key, value})
		types.Drive(cs, cv)
		if p.numRunning <= p.max {
			return callNext(&pstep{p: p, phase: phaseNext}, p.it)
		}
		p.paused = true
		return nil, types.Nil
	}
	return nil, types.Nil
}

type parallelChildWaiter struct{ p *Parallel }

func (w *parallelChildWaiter) Run(result types.Value) (types.State, types.Value) {
	p := w.p
	p.numRunning--
	if types.IsError(result) && p.failed == nil {
		p.failed = result
	}
	if p.paused && p.numRunning <= p.burst && p.failed == nil {
		p.paused = false
		s, v := callNext(&pstep{p: p, phase: phaseNext}, p.it)
		types.Drive(s, v)
		return nil, types.Nil
	}
	if p.paused && p.failed != nil {
		p.exhausted = true
	}
	p.checkDone()
	return nil, types.Nil
}

func (p *Parallel) checkDone() {
	if p.ownerDone || p.owner == nil {
		return
	}
	if p.exhausted && p.numRunning == 0 {
		p.ownerDone = true
		result := types.Value(types.Nil)
		if p.failed != nil {
			result = p.failed
		}
		p.sched.Schedule(p.owner, result)
	}
}

func callIterate(caller types.State, v types.Value) (types.State, types.Value) {
	td := v.Type()
	if td.Iterate == nil {
		return caller, types.NewError(types.TypeError, "value of type "+td.Name+" is not iterable")
	}
	return td.Iterate(caller, v)
}

func callNext(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Next(caller, v)
}

func callKey(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Key(caller, v)
}

func callValue(caller types.State, v types.Value) (types.State, types.Value) {
	return v.Type().Value(caller, v)
}
