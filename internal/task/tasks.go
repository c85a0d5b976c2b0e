package task

import (
	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

// TasksType is a bounded fan-out coordinator (§4.6 "tasks"): children
// are added one call at a time; once MaxRunning are in flight further
// additions queue, and once MaxPending have queued the adding caller
// itself parks until room frees up. A child error puts the group into
// an absorbing failed state; the owner — whoever constructed the
// group — is resumed with Nil once every running child has finished
// with no error outstanding.
var TasksType = &types.TypeDescriptor{Name: "tasks"}

type pendingCall struct {
	fn   types.Value
	args []types.Value
}

type Tasks struct {
	sched      *schedule.Scheduler
	owner      types.State
	ownerDone  bool
	maxRunning int
	maxPending int
	numRunning int
	pending    []pendingCall
	adding     []types.State
	failed     types.Value
}

func (*Tasks) Type() *types.TypeDescriptor { return TasksType }

// NewTasks constructs a fan-out group. owner is resumed (via the
// scheduler) with Nil once the group drains cleanly, or with the first
// error any child reports.
func NewTasks(sched *schedule.Scheduler, maxRunning, maxPending int, owner types.State) *Tasks {
	return &Tasks{sched: sched, owner: owner, maxRunning: maxRunning, maxPending: maxPending}
}

func init() {
	// Calling a tasks handle with (fn, args...) adds a child (§4.6):
	// if there's room it runs immediately, otherwise it queues, and if
	// the queue itself is saturated the adder parks.
	TasksType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		t := self.(*Tasks)
		if len(args) == 0 {
			return caller, types.NewError(types.TypeError, "tasks requires a function to add")
		}
		fn, rest := args[0], args[1:]
		return t.add(caller, fn, rest)
	}
}

func (t *Tasks) add(caller types.State, fn types.Value, args []types.Value) (types.State, types.Value) {
	if t.failed != nil {
		return caller, t.failed
	}
	if t.numRunning < t.maxRunning {
		t.numRunning++
		t.run(fn, args)
		return caller, t
	}
	t.pending = append(t.pending, pendingCall{fn: fn, args: args})
	if len(t.pending) > t.maxPending {
		t.adding = append(t.adding, caller)
		return nil, types.Nil
	}
	return caller, t
}

// run kicks off one child call, independently of whatever chain called
// Add — its completion reaches the group only through childDone.
func (t *Tasks) run(fn types.Value, args []types.Value) {
	s, v := types.Call(&childWaiter{t: t}, fn, args)
	types.Drive(s, v)
}

type childWaiter struct{ t *Tasks }

func (w *childWaiter) Run(result types.Value) (types.State, types.Value) {
	w.t.childDone(result)
	return nil, types.Nil
}

// childDone implements the spec's completion rule verbatim: on error,
// drain every parked adder with the error and fail the owner; on
// success, start the next pending call and wake one parked adder, or —
// once both the pending queue and running count are empty — resume
// the owner with Nil.
func (t *Tasks) childDone(result types.Value) {
	t.numRunning--
	if types.IsError(result) {
		t.failed = result
		for _, a := range t.adding {
			t.sched.Schedule(a, result)
		}
		t.adding = nil
		t.finishOwner(result)
		return
	}
	if len(t.pending) > 0 {
		next := t.pending[0]
		t.pending = t.pending[1:]
		t.numRunning++
		t.run(next.fn, next.args)
		if len(t.adding) > 0 {
			a := t.adding[0]
			t.adding = t.adding[1:]
			t.sched.Schedule(a, t)
		}
		return
	}
	if t.numRunning == 0 {
		t.finishOwner(types.Nil)
	}
}

func (t *Tasks) finishOwner(value types.Value) {
	if t.ownerDone || t.owner == nil {
		return
	}
	t.ownerDone = true
	t.sched.Schedule(t.owner, value)
}
