package task

import (
	"testing"

	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

func makeChild(fail bool) *types.Builtin {
	return types.NewBuiltin("child", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		if fail {
			return caller, types.NewError(types.RangeError, "child failed")
		}
		return caller, args[0]
	})
}

func TestTasksRunsWithinLimitImmediately(t *testing.T) {
	sched := schedule.New()
	owner := &captureState{}
	grp := NewTasks(sched, 2, 2, owner)
	child := makeChild(false)

	caller, v := types.Call(types.Terminal, grp, []types.Value{child, types.Int{V: 1}})
	if caller != types.Terminal {
		t.Fatalf("adding within MaxRunning should return the handle immediately")
	}
	if v != types.Value(grp) {
		t.Fatalf("got %#v, want the tasks handle", v)
	}
	sched.Drain()
	if !owner.hit {
		t.Fatalf("owner never resumed once the lone child finished")
	}
	if owner.got != types.Value(types.Nil) {
		t.Fatalf("got %#v, want Nil once the group drained clean", owner.got)
	}
}

func TestTasksQueuesBeyondMaxRunning(t *testing.T) {
	sched := schedule.New()
	owner := &captureState{}
	grp := NewTasks(sched, 1, 1, owner)

	blocker := New(sched) // never completed during this test
	blockFn := types.NewBuiltin("block", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return types.Call(caller, blocker, nil)
	})
	child := makeChild(false)

	caller1, v1 := types.Call(types.Terminal, grp, []types.Value{blockFn})
	if caller1 != types.Terminal || v1 != types.Value(grp) {
		t.Fatalf("first add should run immediately and return the handle")
	}

	caller2, v2 := types.Call(types.Terminal, grp, []types.Value{child, types.Int{V: 2}})
	if caller2 != types.Terminal {
		t.Fatalf("second add should still return immediately (pending within MaxPending)")
	}
	if v2 != types.Value(grp) {
		t.Fatalf("got %#v, want the tasks handle", v2)
	}
	if len(grp.pending) != 1 {
		t.Fatalf("expected the second child queued, got %d pending", len(grp.pending))
	}

	adder := &captureState{}
	thirdChild := makeChild(false)
	parked, _ := types.Call(adder, grp, []types.Value{thirdChild, types.Int{V: 3}})
	if parked != nil {
		t.Fatalf("third add should park once NumPending exceeds MaxPending")
	}
	if adder.hit {
		t.Fatalf("parked adder ran before any slot freed")
	}

	blocker.Done(types.Int{V: 1})
	sched.Drain()
	if !adder.hit {
		t.Fatalf("parked adder never woke once a slot freed")
	}
}

func TestTasksAbsorbsChildError(t *testing.T) {
	sched := schedule.New()
	owner := &captureState{}
	grp := NewTasks(sched, 1, 0, owner)
	failing := makeChild(true)

	types.Call(types.Terminal, grp, []types.Value{failing})
	sched.Drain()

	if !owner.hit {
		t.Fatalf("owner never notified of the child failure")
	}
	if !types.IsError(owner.got) {
		t.Fatalf("got %#v, want a propagating error", owner.got)
	}

	again := makeChild(false)
	_, v := types.Call(types.Terminal, grp, []types.Value{again, types.Int{V: 9}})
	if !types.IsError(v) {
		t.Fatalf("absorbing state should reject further adds with the stored error, got %#v", v)
	}
}
