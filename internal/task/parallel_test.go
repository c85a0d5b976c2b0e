package task

import (
	"testing"

	"sentracore/internal/container"
	"sentracore/internal/schedule"
	"sentracore/internal/types"
)

func TestParallelVisitsEveryPairAndFinishes(t *testing.T) {
	sched := schedule.New()
	list := container.NewList()
	list.Append(types.Int{V: 10})
	list.Append(types.Int{V: 20})
	list.Append(types.Int{V: 30})

	var seen []types.Value
	fn := types.NewBuiltin("visit", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		seen = append(seen, args[1])
		return caller, types.Nil
	})

	owner := &captureState{}
	p := NewParallel(sched, list, 2, 1, fn)
	p.Start(owner)
	sched.Drain()

	if !owner.hit {
		t.Fatalf("owner never resumed once the source was exhausted")
	}
	if owner.got != types.Value(types.Nil) {
		t.Fatalf("got %#v, want Nil", owner.got)
	}
	if len(seen) != 3 {
		t.Fatalf("got %d visits, want 3: %v", len(seen), seen)
	}
}

func TestParallelPropagatesFirstError(t *testing.T) {
	sched := schedule.New()
	list := container.NewList()
	list.Append(types.Int{V: 1})
	list.Append(types.Int{V: 2})

	fn := types.NewBuiltin("fail-even", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		if n, ok := args[1].(types.Int); ok && n.V%2 == 0 {
			return caller, types.NewError(types.RangeError, "even")
		}
		return caller, types.Nil
	})

	owner := &captureState{}
	p := NewParallel(sched, list, 2, 2, fn)
	p.Start(owner)
	sched.Drain()

	if !owner.hit || !types.IsError(owner.got) {
		t.Fatalf("got %#v, want a propagated error", owner.got)
	}
}
