package seqfn

import (
	"testing"

	"sentracore/internal/container"
	"sentracore/internal/types"
)

func listOf(vals ...int64) *container.List {
	l := container.NewList()
	for _, v := range vals {
		l.Put(types.Int{V: v})
	}
	return l
}

func callSync(fn *types.Builtin, args ...types.Value) types.Value {
	s, v := fn.Fn(types.Terminal, fn, args)
	return types.Drive(s, v)
}

func TestAllCollectsEveryValue(t *testing.T) {
	result := callSync(All, listOf(1, 2, 3))
	l, ok := result.(*container.List)
	if !ok {
		t.Fatalf("expected *container.List, got %T", result)
	}
	if l.Length() != 3 {
		t.Fatalf("expected length 3, got %d", l.Length())
	}
	if l.Get(1).(types.Int).V != 1 || l.Get(3).(types.Int).V != 3 {
		t.Fatalf("unexpected contents: %v", l)
	}
}

func TestCountCountsYieldedValues(t *testing.T) {
	result := callSync(Count, listOf(1, 2, 3, 4))
	if result.(types.Int).V != 4 {
		t.Fatalf("expected count 4, got %v", result)
	}
}

func TestFoldSingleElementReturnsThatElement(t *testing.T) {
	result := callSync(Fold, listOf(42), plusFn)
	if result.(types.Int).V != 42 {
		t.Fatalf("expected 42, got %v", result)
	}
}

func TestFoldEmptyReturnsNil(t *testing.T) {
	empty := container.NewList()
	result := callSync(Fold, empty, plusFn)
	if result != types.Nil {
		t.Fatalf("expected Nil, got %v", result)
	}
}

func TestFoldProductMatchesFactorial(t *testing.T) {
	result := callSync(Fold, listOf(1, 2, 3, 4), timesFn)
	if result.(types.Int).V != 24 {
		t.Fatalf("expected 24, got %v", result)
	}
}

func TestSumEqualsLeftFold(t *testing.T) {
	folded := callSync(Fold, listOf(3, 1, 4, 1, 5), plusFn)
	summed := callSync(Sum, listOf(3, 1, 4, 1, 5))
	if folded.(types.Int).V != summed.(types.Int).V {
		t.Fatalf("sum %v != fold(+) %v", summed, folded)
	}
}

func TestMinAndMax(t *testing.T) {
	min := callSync(Min, listOf(3, 1, 4, 1, 5, 9, 2, 6))
	max := callSync(Max, listOf(3, 1, 4, 1, 5, 9, 2, 6))
	if min.(types.Int).V != 1 {
		t.Fatalf("expected min 1, got %v", min)
	}
	if max.(types.Int).V != 9 {
		t.Fatalf("expected max 9, got %v", max)
	}
}

func TestMapBuildsKeyedAccumulation(t *testing.T) {
	result := callSync(MapReduce, listOf(10, 20, 30))
	m, ok := result.(*container.Map)
	if !ok {
		t.Fatalf("expected *container.Map, got %T", result)
	}
	if m.Search(types.Int{V: 1}).(types.Int).V != 10 {
		t.Fatalf("expected key 1 -> 10, got %v", m.Search(types.Int{V: 1}))
	}
	if m.Search(types.Int{V: 3}).(types.Int).V != 30 {
		t.Fatalf("expected key 3 -> 30, got %v", m.Search(types.Int{V: 3}))
	}
}
