// Package task implements the task coordination primitives of §4.6:
// task (a single-assignment future), tasks (bounded fan-out), parallel
// (iterate-and-fan-out with backpressure) and buffered (order-
// preserving overlapped application). All of it rides the same
// continuation discipline as the interpreter — a waiting caller is
// just a parked types.State, resumed later via the scheduler.
package task

import (
	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

// TaskType is a future: unset until Done/Fail completes it, after
// which every call on it returns the stored value immediately (§4.6
// "task").
var TaskType = &types.TypeDescriptor{Name: "task"}

type Task struct {
	sched   *schedule.Scheduler
	set     bool
	value   types.Value
	primary types.State   // the first caller to arrive while unset
	waiters []types.State // every later caller, in registration order
}

func (*Task) Type() *types.TypeDescriptor { return TaskType }

func New(sched *schedule.Scheduler) *Task { return &Task{sched: sched} }

func init() {
	TaskType.Call = func(caller types.State, self types.Value, _ []types.Value) (types.State, types.Value) {
		t := self.(*Task)
		if t.set {
			return caller, t.value
		}
		if t.primary == nil {
			t.primary = caller
		} else {
			t.waiters = append(t.waiters, caller)
		}
		// Parked: nothing runs synchronously until Done/Fail. The
		// trampoline driving this call simply has no further work
		// right now; the eventual result reaches its destination
		// through the waiter registered above, not through this
		// return value.
		return nil, types.Nil
	}
}

// Done completes t with value, scheduling every non-primary waiter
// through the scheduler in registration order (§5 "completions
// delivered by the scheduler to distinct waiters of one task occur in
// registration order") and then resuming the primary waiter — the
// first caller to have arrived — inline, exactly as §4.6 describes.
func (t *Task) Done(value types.Value) types.Value {
	if t.set {
		return types.NewError(types.TaskError, "task value already set")
	}
	t.set = true
	t.value = value
	for _, w := range t.waiters {
		t.sched.Schedule(w, value)
	}
	if t.primary != nil {
		types.Drive(t.primary, value)
	}
	return value
}

// Fail completes t with an error value, per the same contract as Done.
func (t *Task) Fail(kind types.Kind, message string) types.Value {
	return t.Done(types.NewError(kind, message))
}

// Then wraps a call to fn in a new task: once fn(args) completes, its
// result is routed through ok (on success) or errFn (on error, if
// given — nil means errors pass straight through unrouted), and the
// outcome of that routing completes the returned task (§4.6 "then").
func Then(sched *schedule.Scheduler, fn types.Value, args []types.Value, ok, errFn types.Value) *Task {
	t := New(sched)
	c := &composed{outer: t, ok: ok, errFn: errFn}
	s, v := types.Call(c, fn, args)
	types.Drive(s, v)
	return t
}

// Else is Then with no success router: fn's result passes through
// unrouted, errFn only intercepts a failure (§4.6 "else").
func Else(sched *schedule.Scheduler, fn types.Value, args []types.Value, errFn types.Value) *Task {
	return Then(sched, fn, args, nil, errFn)
}

// On routes every completion, success or failure, through a single
// handler (§4.6 "on").
func On(sched *schedule.Scheduler, fn types.Value, args []types.Value, handler types.Value) *Task {
	t := New(sched)
	c := &composed{outer: t, ok: handler, errFn: handler}
	s, v := types.Call(c, fn, args)
	types.Drive(s, v)
	return t
}

// composed is the continuation `then`/`else`/`on` park the underlying
// call behind: it sees the call's raw result first, picks the router
// that applies, and — once that router's own call (if any) completes —
// finishes the outer task with its result.
type composed struct {
	outer   *Task
	ok      types.Value
	errFn   types.Value
	routing bool
}

func (c *composed) Run(result types.Value) (types.State, types.Value) {
	if !c.routing {
		c.routing = true
		var route types.Value
		if types.IsError(result) {
			route = c.errFn
		} else {
			route = c.ok
		}
		if route == nil {
			c.outer.Done(result)
			return nil, types.Nil
		}
		return types.Call(c, route, []types.Value{result})
	}
	c.outer.Done(result)
	return nil, types.Nil
}
