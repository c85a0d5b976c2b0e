package iterate

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

// drain pulls every (key, value) pair from seq using the package's own
// Iterate/Next/Key/Value helpers, synchronously — every source used in
// these tests is a plain list, so nothing ever parks.
func drain(t *testing.T, seq types.Value) []int64 {
	t.Helper()
	var out []int64
	s, v := Iterate(types.Terminal, seq)
	it := types.Drive(s, v)
	for it != types.Nil {
		vs, vv := Value(types.Terminal, it)
		val := types.Drive(vs, vv)
		n, ok := val.(types.Int)
		if !ok {
			t.Fatalf("expected Int value, got %T", val)
		}
		out = append(out, n.V)
		s, v := Next(types.Terminal, it)
		it = types.Drive(s, v)
	}
	return out
}

func TestLimitedStopsAfterN(t *testing.T) {
	l := NewLimited(listOf(10, 20, 30, 40), 2)
	got := drain(t, l)
	want := []int64{10, 20}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLimitedZeroYieldsNothing(t *testing.T) {
	l := NewLimited(listOf(1, 2, 3), 0)
	got := drain(t, l)
	if len(got) != 0 {
		t.Fatalf("expected no items, got %v", got)
	}
}

func TestSkippedDiscardsPrefix(t *testing.T) {
	s := NewSkipped(listOf(1, 2, 3, 4, 5), 2)
	got := drain(t, s)
	want := []int64{3, 4, 5}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUniqueDropsRepeats(t *testing.T) {
	u := NewUnique(listOf(1, 1, 2, 3, 3, 3, 4))
	got := drain(t, u)
	want := []int64{1, 2, 3, 4}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUniqueKeysAreOneBasedPositions(t *testing.T) {
	u := NewUnique(listOf(5, 5, 6))
	s, v := Iterate(types.Terminal, u)
	it := types.Drive(s, v)
	ks, kv := Key(types.Terminal, it)
	k := types.Drive(ks, kv)
	if k.(types.Int).V != 1 {
		t.Fatalf("expected first key 1, got %v", k)
	}
	s, v = Next(types.Terminal, it)
	it = types.Drive(s, v)
	ks, kv = Key(types.Terminal, it)
	k = types.Drive(ks, kv)
	if k.(types.Int).V != 2 {
		t.Fatalf("expected second key 2, got %v", k)
	}
}

func TestSequencedConcatenates(t *testing.T) {
	s := NewSequenced(listOf(1, 2), listOf(3, 4))
	got := drain(t, s)
	want := []int64{1, 2, 3, 4}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRepeatedProducesInfiniteSeriesPrefix(t *testing.T) {
	double := types.NewBuiltin("double", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		n := args[0].(types.Int)
		return caller, types.Int{V: n.V * 2}
	})
	r := NewRepeated(types.Int{V: 1}, double)
	limited := NewLimited(r, 4)
	got := drain(t, limited)
	want := []int64{1, 2, 4, 8}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGroupedZipsUntilShortestExhausts(t *testing.T) {
	add := types.NewBuiltin("add", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		a := args[0].(types.Int)
		b := args[1].(types.Int)
		return caller, types.Int{V: a.V + b.V}
	})
	g := NewGrouped([]types.Value{listOf(1, 2, 3), listOf(10, 20)}, add)
	got := drain(t, g)
	want := []int64{11, 22}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func eq(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
