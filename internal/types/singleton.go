package types

// nilValue and someValue are zero-size so the two global singletons
// compare equal by interface identity without any pointer indirection.
type nilValue struct{}
type someValue struct{}

func (nilValue) Type() *TypeDescriptor  { return NilType }
func (someValue) Type() *TypeDescriptor { return SomeType }

var (
	// Nil is the falsy singleton; yields end-of-sequence from every
	// iteration hook and from a map's missed search.
	Nil Value = nilValue{}
	// Some is the truthy placeholder singleton.
	Some Value = someValue{}
)

var NilType = &TypeDescriptor{Name: "nil"}
var SomeType = &TypeDescriptor{Name: "some"}

func init() {
	NilType.Hash = func(Value, *HashChain) uint64 { return 0 }
	NilType.Compare = func(a, b Value) int {
		if _, ok := b.(nilValue); ok {
			return 0
		}
		return -1
	}
	SomeType.Hash = func(Value, *HashChain) uint64 { return 1 }
	SomeType.Compare = func(a, b Value) int {
		if _, ok := b.(someValue); ok {
			return 0
		}
		return 1
	}
}
