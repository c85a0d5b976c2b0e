package container

import "sentracore/internal/types"

// Sort reorders the map's insertion-ordered entries in place according
// to cmp(keyA, keyB), a user comparator expected to return a negative,
// zero or positive Int (§4.5, testable property 8: a comparator error
// must leave the map in a well-formed state rather than a torn list;
// here it leaves the original insertion order in place).
//
// The comparator is invoked synchronously via types.CallSync. A
// genuinely suspending comparator will not be correctly awaited here —
// see DESIGN.md for why this is an accepted simplification.
func (m *Map) Sort(cmp types.Value) types.Value {
	if m.head == nil {
		return types.Nil
	}
	nodes := make([]*mapNode, 0, m.size)
	for n := m.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}

	sorted, errVal := mergeSort(nodes, cmp)
	if errVal != nil {
		// mergeSort never reorders nodes in place, so re-stitching
		// the original slice restores the pre-sort insertion order
		// and keeps the list well-formed.
		m.relink(nodes)
		return errVal
	}
	m.relink(sorted)
	return types.Nil
}

func (m *Map) relink(nodes []*mapNode) {
	var prev *mapNode
	for _, n := range nodes {
		n.prev = prev
		if prev != nil {
			prev.next = n
		} else {
			m.head = n
		}
		prev = n
	}
	if prev != nil {
		prev.next = nil
	}
	m.tail = prev
}

// mergeSort performs a top-down, stable merge sort into freshly
// allocated node slices, returning (nil, errVal) the first time the
// comparator reports an error; the input slice is left unchanged.
func mergeSort(nodes []*mapNode, cmp types.Value) ([]*mapNode, types.Value) {
	if len(nodes) <= 1 {
		return nodes, nil
	}
	mid := len(nodes) / 2
	left, errL := mergeSort(nodes[:mid], cmp)
	if errL != nil {
		return nil, errL
	}
	right, errR := mergeSort(nodes[mid:], cmp)
	if errR != nil {
		return nil, errR
	}
	return merge(left, right, cmp)
}

func merge(left, right []*mapNode, cmp types.Value) ([]*mapNode, types.Value) {
	out := make([]*mapNode, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		c, errVal := callCompare(cmp, left[i].key, right[j].key)
		if errVal != nil {
			return nil, errVal
		}
		if c <= 0 {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out, nil
}

func callCompare(cmp types.Value, a, b types.Value) (int, types.Value) {
	result := types.CallSync(cmp, []types.Value{a, b})
	if types.IsError(result) {
		return 0, result
	}
	n, ok := types.Deref(result).(types.Int)
	if !ok {
		return 0, types.NewError(types.TypeError, "sort comparator must return an integer")
	}
	switch {
	case n.V < 0:
		return -1, nil
	case n.V > 0:
		return 1, nil
	default:
		return 0, nil
	}
}
