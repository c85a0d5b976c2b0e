package task

import (
	"testing"

	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

type captureState struct {
	got types.Value
	hit bool
}

func (c *captureState) Run(result types.Value) (types.State, types.Value) {
	c.got = result
	c.hit = true
	return nil, types.Nil
}

func TestTaskResumesPrimaryInline(t *testing.T) {
	sched := schedule.New()
	tk := New(sched)
	cap := &captureState{}

	s, v := types.Call(cap, tk, nil)
	if s != nil {
		t.Fatalf("expected the first caller to park, got state %#v", s)
	}
	_ = v
	if cap.hit {
		t.Fatalf("primary waiter resumed before the task was done")
	}

	tk.Done(types.Int{V: 7})
	if !cap.hit {
		t.Fatalf("primary waiter never resumed")
	}
	if cap.got != types.Value(types.Int{V: 7}) {
		t.Fatalf("got %#v, want Int{7}", cap.got)
	}
}

func TestTaskLateCallReturnsImmediately(t *testing.T) {
	sched := schedule.New()
	tk := New(sched)
	tk.Done(types.Int{V: 9})

	caller, v := types.Call(types.Terminal, tk, nil)
	if caller != types.Terminal {
		t.Fatalf("a set task should hand straight back to its caller")
	}
	if v != types.Value(types.Int{V: 9}) {
		t.Fatalf("got %#v, want Int{9}", v)
	}
}

type orderTrackingState struct {
	label string
	order *[]string
}

func (o *orderTrackingState) Run(result types.Value) (types.State, types.Value) {
	*o.order = append(*o.order, o.label)
	return nil, types.Nil
}

func TestTaskSecondaryWaitersScheduledInRegistrationOrder(t *testing.T) {
	sched := schedule.New()
	tk := New(sched)

	var order []string
	primary := &orderTrackingState{label: "primary", order: &order}
	second := &orderTrackingState{label: "second", order: &order}
	third := &orderTrackingState{label: "third", order: &order}

	types.Call(primary, tk, nil)
	types.Call(second, tk, nil)
	types.Call(third, tk, nil)

	tk.Done(types.Int{V: 1})
	sched.Drain()

	want := []string{"primary", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got order %v, want %v", order, want)
		}
	}
}

func TestThenRoutesSuccessThroughOk(t *testing.T) {
	sched := schedule.New()
	fn := types.NewBuiltin("id", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, args[0]
	})
	double := types.NewBuiltin("double", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Add(args[0], args[0])
	})

	outer := Then(sched, fn, []types.Value{types.Int{V: 5}}, double, nil)
	if !outer.set {
		t.Fatalf("expected the composed task to complete synchronously")
	}
	if outer.value != types.Value(types.Int{V: 10}) {
		t.Fatalf("got %#v, want Int{10}", outer.value)
	}
}

func TestElseRoutesOnlyErrors(t *testing.T) {
	sched := schedule.New()
	boom := types.NewBuiltin("boom", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.NewError(types.RangeError, "boom")
	})
	fallback := types.NewBuiltin("fallback", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Int{V: -1}
	})

	outer := Else(sched, boom, nil, fallback)
	if outer.value != types.Value(types.Int{V: -1}) {
		t.Fatalf("got %#v, want Int{-1}", outer.value)
	}
}
