package types

import "hash/fnv"

// StringType is the builtin immutable string value. It also backs
// method-name and keyword-argument labels (§3 "Names").
var StringType = &TypeDescriptor{Name: "string"}

type String struct{ V string }

func (String) Type() *TypeDescriptor { return StringType }

func init() {
	StringType.Hash = func(v Value, _ *HashChain) uint64 {
		h := fnv.New64a()
		h.Write([]byte(v.(String).V))
		return h.Sum64()
	}
	StringType.Compare = func(a, b Value) int {
		x := a.(String).V
		y, ok := b.(String)
		if !ok {
			return 1
		}
		switch {
		case x < y.V:
			return -1
		case x > y.V:
			return 1
		default:
			return 0
		}
	}
}
