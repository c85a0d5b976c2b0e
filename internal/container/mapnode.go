package container

import "sentracore/internal/types"

// MapNodeType is a node in a map (§3). Dereferencing returns the
// corresponding value; assigning updates it — and, if the node is
// still "floating" (produced by an index on a missing key), inserts it
// first (§4.5 "A floating node").
var MapNodeType = &types.TypeDescriptor{Name: "map-node"}

type MapNode struct {
	m    *Map
	node *mapNode
	key  types.Value
}

func (*MapNode) Type() *types.TypeDescriptor { return MapNodeType }

func init() {
	MapNodeType.Deref = func(v types.Value) types.Value {
		n := v.(*MapNode)
		if n.node == nil {
			return types.Nil
		}
		return n.node.value
	}
	MapNodeType.Assign = func(v types.Value, x types.Value) types.Value {
		n := v.(*MapNode)
		if n.node == nil {
			n.node = n.m.insertNode(&n.m.root, hashOf(n.key), n.key)
		}
		n.node.value = x
		return x
	}
	MapNodeType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		n := self.(*MapNode)
		target := types.Nil
		if n.node != nil {
			target = n.node.value
		}
		return types.Call(caller, target, args)
	}

	MapType.Hash = func(v types.Value, chain *types.HashChain) uint64 {
		m := v.(*Map)
		next, cyclic := chain.Enter(v)
		if cyclic {
			return 0
		}
		var h uint64 = 0xcbf29ce484222325
		m.Each(func(k, val types.Value) bool {
			h = h*1099511628211 ^ hashWith(k, next)
			h = h*1099511628211 ^ hashWith(val, next)
			return true
		})
		return h
	}
	MapType.Compare = func(a, b types.Value) int {
		x, y := a.(*Map), b.(*Map)
		if x.size != y.size {
			if x.size < y.size {
				return -1
			}
			return 1
		}
		xn, yn := x.head, y.head
		for xn != nil && yn != nil {
			if c := compareKeys(xn.key, yn.key); c != 0 {
				return c
			}
			if c := compareValues(xn.value, yn.value); c != 0 {
				return c
			}
			xn, yn = xn.next, yn.next
		}
		return 0
	}

	// Calling a map indexes it: map(key) returns the existing node, or
	// a floating node that will insert on assignment; map(key, fn)
	// materializes a default via fn(key) and inserts it immediately
	// (§4.5 "map[key, fn]").
	MapType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		m := self.(*Map)
		if len(args) == 0 {
			return caller, types.NewError(types.ValueError, "map index requires a key")
		}
		key := types.Deref(args[0])
		if n := m.findNode(key); n != nil {
			return caller, &MapNode{m: m, node: n}
		}
		if len(args) >= 2 {
			fn := args[1]
			return types.Call(&mapDefaultInsert{caller: caller, m: m, key: key}, fn, []types.Value{key})
		}
		return caller, &MapNode{m: m, key: key}
	}

	// A map is itself a sequence over its insertion-ordered entries
	// (distinct from the seqfn-level map(seq) reducer that builds a new
	// Map from any sequence).
	MapType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		m := self.(*Map)
		if m.head == nil {
			return caller, types.Nil
		}
		return caller, &mapIter{node: m.head}
	}
	mapIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*mapIter)
		if it.node.next == nil {
			return caller, types.Nil
		}
		return caller, &mapIter{node: it.node.next}
	}
	mapIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, self.(*mapIter).node.key
	}
	mapIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, self.(*mapIter).node.value
	}
}

func hashWith(v types.Value, chain *types.HashChain) uint64 {
	td := v.Type()
	if td.Hash == nil {
		return 0
	}
	return td.Hash(v, chain)
}

// mapIter is the iterator position over a Map's insertion-ordered node
// list, mirroring listIter in list.go.
type mapIter struct {
	node *mapNode
}

var mapIterType = &types.TypeDescriptor{Name: "map-iterator"}

func (*mapIter) Type() *types.TypeDescriptor { return mapIterType }

// mapDefaultInsert drives the map[key, fn] default-materialization
// call: fn(key) runs first, and once it completes (possibly via
// further CPS transitions) its result is deref'd, inserted under key,
// and the new node is handed back to the original caller.
type mapDefaultInsert struct {
	caller types.State
	m      *Map
	key    types.Value
}

func (s *mapDefaultInsert) Run(result types.Value) (types.State, types.Value) {
	if types.IsError(result) {
		return s.caller, result
	}
	node := s.m.insertNode(&s.m.root, hashOf(s.key), s.key)
	node.value = types.Deref(result)
	return s.caller, &MapNode{m: s.m, node: node}
}
