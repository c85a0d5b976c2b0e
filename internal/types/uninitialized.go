package types

// UninitializedType marks the compiler's forward-reference placeholder
// (§3). The interpreter's LETI/RESOLVE-style opcodes resolve these in
// place; every prior recorded use is patched when that happens.
var UninitializedType = &TypeDescriptor{Name: "uninitialized"}

// Uninitialized is produced by ENTER/LOCALX for a slot that has not
// been assigned yet; CLOSURE registers a patch on one it captures. Patch registers a callback invoked
// with the eventual value; Resolve fires every registered callback
// exactly once, in registration order, then forgets them.
type Uninitialized struct {
	patches []func(Value)
}

func (*Uninitialized) Type() *TypeDescriptor { return UninitializedType }

func NewUninitialized() *Uninitialized { return &Uninitialized{} }

// Patch records a use of this placeholder that must be fixed up once
// the forward reference resolves.
func (u *Uninitialized) Patch(fn func(Value)) {
	u.patches = append(u.patches, fn)
}

// Resolve patches every prior recorded use with v. Per §9's open
// question, an Uninitialized value surviving past this point (i.e.
// still being read, not just patched) indicates a compiler bug; this
// core chooses to surface that as an InternalError rather than
// silently continuing, since silent continuation is exactly the
// behavior the design notes flag as questionable.
func (u *Uninitialized) Resolve(v Value) {
	patches := u.patches
	u.patches = nil
	for _, p := range patches {
		p(v)
	}
}

func init() {
	UninitializedType.Deref = func(v Value) Value {
		return NewError(InternalError, "read of an unresolved forward reference")
	}
}
