package types

// RefType is the single-slot mutable reference cell used for captured
// locals and `var` bindings (§3 "Reference cell").
var RefType = &TypeDescriptor{Name: "reference"}

type Ref struct {
	Slot Value
}

func (*Ref) Type() *TypeDescriptor { return RefType }

func NewRef(v Value) *Ref { return &Ref{Slot: v} }

func init() {
	RefType.Deref = func(v Value) Value { return v.(*Ref).Slot }
	RefType.Assign = func(v Value, x Value) Value {
		r := v.(*Ref)
		r.Slot = x
		return x
	}
}
