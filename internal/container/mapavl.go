package container

import "sentracore/internal/types"

// MapType is the ordered hashed-AVL associative container (§3 "Map",
// §4.5). Nodes are indexed by (hash(key), compare(key)) for lookup and
// simultaneously threaded into a doubly-linked insertion-order list for
// iteration, grounded directly on the original ml_map.c node layout.
var MapType = &types.TypeDescriptor{Name: "map"}

type mapNode struct {
	left, right  *mapNode
	depth        int
	hash         uint64
	key, value   types.Value
	prev, next   *mapNode
}

type Map struct {
	root       *mapNode
	head, tail *mapNode
	size       int
}

func (*Map) Type() *types.TypeDescriptor { return MapType }

func NewMap() *Map { return &Map{} }

func (m *Map) Size() int { return m.size }

func nodeDepth(n *mapNode) int {
	if n == nil {
		return 0
	}
	return n.depth
}

func balance(n *mapNode) int {
	return nodeDepth(n.left) - nodeDepth(n.right)
}

func updateDepth(n *mapNode) {
	d := nodeDepth(n.left)
	if r := nodeDepth(n.right); r > d {
		d = r
	}
	n.depth = d + 1
}

func rotateLeft(slot **mapNode) {
	node := *slot
	ch := node.right
	node.right = ch.left
	ch.left = node
	updateDepth(node)
	*slot = ch
	updateDepth(*slot)
}

func rotateRight(slot **mapNode) {
	node := *slot
	ch := node.left
	node.left = ch.right
	ch.right = node
	updateDepth(node)
	*slot = ch
	updateDepth(*slot)
}

func rebalance(slot **mapNode) {
	delta := balance(*slot)
	if delta == 2 {
		if balance((*slot).left) < 0 {
			rotateLeft(&(*slot).left)
		}
		rotateRight(slot)
	} else if delta == -2 {
		if balance((*slot).right) > 0 {
			rotateRight(&(*slot).right)
		}
		rotateLeft(slot)
	}
}

func hashOf(v types.Value) uint64 {
	td := v.Type()
	if td.Hash == nil {
		return 0
	}
	return td.Hash(v, nil)
}

func compareKeys(a, b types.Value) int {
	td := a.Type()
	if td.Compare != nil {
		return td.Compare(a, b)
	}
	return compareValues(a, b)
}

// findNode implements ml_map_find_node: descend comparing hash first,
// then full compare; return nil on miss (§4.5 "Search").
func (m *Map) findNode(key types.Value) *mapNode {
	h := hashOf(key)
	node := m.root
	for node != nil {
		var cmp int
		switch {
		case h < node.hash:
			cmp = -1
		case h > node.hash:
			cmp = 1
		default:
			cmp = compareKeys(key, node.key)
		}
		if cmp == 0 {
			return node
		}
		if cmp < 0 {
			node = node.left
		} else {
			node = node.right
		}
	}
	return nil
}

// insertNode implements ml_map_node: find-or-create, rebalancing on
// the way back up, appending new nodes to the insertion list.
func (m *Map) insertNode(slot **mapNode, h uint64, key types.Value) *mapNode {
	if *slot == nil {
		node := &mapNode{hash: h, key: key, value: types.Nil, depth: 1}
		if m.tail != nil {
			m.tail.next = node
			node.prev = m.tail
		} else {
			m.head = node
		}
		m.tail = node
		m.size++
		*slot = node
		return node
	}
	node := *slot
	var cmp int
	switch {
	case h < node.hash:
		cmp = -1
	case h > node.hash:
		cmp = 1
	default:
		cmp = compareKeys(key, node.key)
	}
	if cmp == 0 {
		return node
	}
	var result *mapNode
	if cmp < 0 {
		result = m.insertNode(&node.left, h, key)
	} else {
		result = m.insertNode(&node.right, h, key)
	}
	rebalance(slot)
	updateDepth(*slot)
	return result
}

// Search returns the value stored for key, or Nil on miss (§4.5).
func (m *Map) Search(key types.Value) types.Value {
	n := m.findNode(key)
	if n == nil {
		return types.Nil
	}
	return n.value
}

// Insert stores value for key, returning the previous value (or Nil if
// key was not already present).
func (m *Map) Insert(key, value types.Value) types.Value {
	n := m.insertNode(&m.root, hashOf(key), key)
	old := n.value
	n.value = value
	return old
}

// Delete removes key, returning its prior value (or Nil if absent).
// Implements the standard-AVL in-order-predecessor swap described in
// §4.5, refreshing the replacement's depths before rebalancing back up
// the path.
func (m *Map) Delete(key types.Value) types.Value {
	return m.remove(&m.root, hashOf(key), key)
}

func (m *Map) remove(slot **mapNode, h uint64, key types.Value) types.Value {
	node := *slot
	if node == nil {
		return types.Nil
	}
	var cmp int
	switch {
	case h < node.hash:
		cmp = -1
	case h > node.hash:
		cmp = 1
	default:
		cmp = compareKeys(key, node.key)
	}
	var removed types.Value = types.Nil
	if cmp == 0 {
		removed = node.value
		m.size--
		if node.prev != nil {
			node.prev.next = node.next
		} else {
			m.head = node.next
		}
		if node.next != nil {
			node.next.prev = node.prev
		} else {
			m.tail = node.prev
		}
		switch {
		case node.left != nil && node.right != nil:
			// In-order predecessor: rightmost node of the left subtree.
			y := &node.left
			for (*y).right != nil {
				y = &(*y).right
			}
			replacement := *y
			*y = replacement.left
			replacement.left = node.left
			replacement.right = node.right
			*slot = replacement
			refreshDepths(replacement.left)
		case node.left != nil:
			*slot = node.left
		case node.right != nil:
			*slot = node.right
		default:
			*slot = nil
		}
	} else if cmp < 0 {
		removed = m.remove(&node.left, h, key)
	} else {
		removed = m.remove(&node.right, h, key)
	}
	if *slot != nil {
		updateDepth(*slot)
		rebalance(slot)
	}
	return removed
}

func refreshDepths(n *mapNode) {
	if n == nil {
		return
	}
	refreshDepths(n.right)
	updateDepth(n)
}

// Each calls fn for every node in insertion order, stopping early if fn
// returns false.
func (m *Map) Each(fn func(key, value types.Value) bool) {
	for n := m.head; n != nil; n = n.next {
		if !fn(n.key, n.value) {
			return
		}
	}
}
