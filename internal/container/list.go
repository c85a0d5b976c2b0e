// Package container implements the core's ordered sequence and
// associative container primitives: list, map, tuple, names and
// string-buffer, plus their iteration adapters.
package container

import (
	"fmt"
	"strings"

	"sentracore/internal/types"
)

// ListType is the doubly-linked ordered sequence (§3 "List", §4.5's
// sibling in §3). A cached (index, node) pointer gives amortized
// sub-linear random access; ValidIndices tracks whether that cache (and
// every node's 1-based Index) is currently trustworthy.
var ListType = &types.TypeDescriptor{Name: "list"}

type listNode struct {
	prev, next *listNode
	value      types.Value
	index      int
}

type List struct {
	head, tail   *listNode
	length       int
	cached       *listNode
	cachedIndex  int
	validIndices bool
}

func (*List) Type() *types.TypeDescriptor { return ListType }

func NewList() *List { return &List{} }

func (l *List) Length() int { return l.length }

// Push inserts v at the front of the list.
func (l *List) Push(v types.Value) {
	n := &listNode{value: v, next: l.head}
	l.validIndices = false
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.cached, l.cachedIndex = n, 1
	l.length++
}

// Put appends v at the back of the list.
func (l *List) Put(v types.Value) {
	n := &listNode{value: v, prev: l.tail}
	l.validIndices = false
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.length++
	l.cached, l.cachedIndex = n, l.length
}

// Pop removes and returns the front value, or Nil if empty.
func (l *List) Pop() types.Value {
	n := l.head
	if n == nil {
		return types.Nil
	}
	l.validIndices = false
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.cached, l.cachedIndex = l.head, 1
	l.length--
	return n.value
}

// Pull removes and returns the back value, or Nil if empty.
func (l *List) Pull() types.Value {
	n := l.tail
	if n == nil {
		return types.Nil
	}
	l.validIndices = false
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.cached, l.cachedIndex = l.tail, -l.length
	l.length--
	return n.value
}

// Append is an alias for Put used by the LIST_APPEND bytecode opcode
// building list literals incrementally (§4.2).
func (l *List) Append(v types.Value) { l.Put(v) }

// index implements ml_list_index: 1-based with negative/zero indices
// counting from the end, amortized via the (index, node) cache.
func (l *List) index(i int) *listNode {
	length := l.length
	if i <= 0 {
		i += length + 1
	}
	if i > length || i < 1 {
		return nil
	}
	if i == length {
		return l.tail
	}
	if i == 1 {
		return l.head
	}
	cachedIndex := l.cachedIndex
	if l.cached == nil {
		cachedIndex = 0
		l.cached = l.head
	}
	switch i - cachedIndex {
	case -1:
		l.cachedIndex = i
		l.cached = l.cached.prev
		return l.cached
	case 0:
		return l.cached
	case 1:
		l.cachedIndex = i
		l.cached = l.cached.next
		return l.cached
	}
	l.cachedIndex = i
	var node *listNode
	switch {
	case 2*i < cachedIndex:
		node = l.head
		for steps := i - 1; steps > 0; steps-- {
			node = node.next
		}
	case i < cachedIndex:
		node = l.cached
		for steps := cachedIndex - i; steps > 0; steps-- {
			node = node.prev
		}
	case 2*i < cachedIndex+length:
		node = l.cached
		for steps := i - cachedIndex; steps > 0; steps-- {
			node = node.next
		}
	default:
		node = l.tail
		for steps := length - i; steps > 0; steps-- {
			node = node.prev
		}
	}
	l.cached = node
	return node
}

// Get returns the value at 1-based index i, or Nil if out of range.
func (l *List) Get(i int) types.Value {
	n := l.index(i)
	if n == nil {
		return types.Nil
	}
	return n.value
}

// Set writes the value at 1-based index i; returns false if out of range.
func (l *List) Set(i int, v types.Value) bool {
	n := l.index(i)
	if n == nil {
		return false
	}
	n.value = v
	return true
}

// reindex rebuilds contiguous 1-based Index fields lazily, once per
// iterate call, per §3's List invariants.
func (l *List) reindex() {
	if l.validIndices {
		return
	}
	i := 1
	for n := l.head; n != nil; n = n.next {
		n.index = i
		i++
	}
	l.validIndices = true
}

// String renders the canonical "[a, b, …]" form (§8 round-trip:
// list_to_string(list_of(seq))).
func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for n := l.head; n != nil; n = n.next {
		if n != l.head {
			sb.WriteString(", ")
		}
		sb.WriteString(ToDisplayString(n.value))
	}
	sb.WriteByte(']')
	return sb.String()
}

// ToDisplayString renders any value the way the canonical list
// rendering needs to: numbers and strings directly, everything else
// via fmt, falling back to the type name for values with no sensible
// text form.
func ToDisplayString(v types.Value) string {
	switch x := v.(type) {
	case types.Int, types.Real:
		return types.NumberString(x)
	case types.String:
		return x.V
	case fmt.Stringer:
		return x.String()
	default:
		if v == types.Nil {
			return "nil"
		}
		if v == types.Some {
			return "some"
		}
		return v.Type().Name
	}
}

// listIter is the state object driving list iteration: a first-class
// iterator position threaded by Next/Key/Value, per §4.4.
type listIter struct {
	node *listNode
}

func (*listIter) Type() *types.TypeDescriptor { return listIterType }

var listIterType = &types.TypeDescriptor{Name: "list-iterator"}

func init() {
	ListType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		l := self.(*List)
		l.reindex()
		if l.head == nil {
			return caller, types.Nil
		}
		return caller, &listIter{node: l.head}
	}
	listIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*listIter)
		if it.node.next == nil {
			return caller, types.Nil
		}
		return caller, &listIter{node: it.node.next}
	}
	listIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*listIter)
		return caller, types.Int{V: int64(it.node.index)}
	}
	listIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*listIter)
		return caller, it.node.value
	}

	ListType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		l := self.(*List)
		if len(args) < 1 {
			return caller, types.NewError(types.ValueError, "list index requires an argument")
		}
		idx, ok := types.Deref(args[0]).(types.Int)
		if !ok {
			return caller, types.NewError(types.TypeError, "list index must be an integer")
		}
		return caller, l.Get(int(idx.V))
	}
	ListType.Hash = func(v types.Value, chain *types.HashChain) uint64 {
		l := v.(*List)
		next, cyclic := chain.Enter(v)
		if cyclic {
			return 0
		}
		var h uint64 = 0x9e3779b97f4a7c15
		for n := l.head; n != nil; n = n.next {
			td := n.value.Type()
			var sub uint64
			if td.Hash != nil {
				sub = td.Hash(n.value, next)
			}
			h = h*1099511628211 ^ sub
		}
		return h
	}
	ListType.Compare = func(a, b types.Value) int {
		x, y := a.(*List), b.(*List)
		xn, yn := x.head, y.head
		for xn != nil && yn != nil {
			if c := compareValues(xn.value, yn.value); c != 0 {
				return c
			}
			xn, yn = xn.next, yn.next
		}
		switch {
		case xn == nil && yn == nil:
			return 0
		case xn == nil:
			return -1
		default:
			return 1
		}
	}
}

// compareValues is the default ordering used internally by containers
// when no richer comparator is supplied: numeric/string builtins
// compare natively, everything else falls back to type-descriptor
// Compare if present.
func compareValues(a, b types.Value) int {
	td := a.Type()
	if td.Compare != nil {
		return td.Compare(a, b)
	}
	return 1
}
