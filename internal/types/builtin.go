package types

// BuiltinType is the type of a callable backed directly by a Go
// function rather than interpreted bytecode — the Go analogue of the
// source's ML_METHOD-registered C function pointers. Combinators,
// default comparators and stdlib entry points are all Builtins.
var BuiltinType = &TypeDescriptor{Name: "builtin-function"}

type Builtin struct {
	Name string
	Fn   CallFn
}

func (*Builtin) Type() *TypeDescriptor { return BuiltinType }

func NewBuiltin(name string, fn CallFn) *Builtin { return &Builtin{Name: name, Fn: fn} }

func init() {
	BuiltinType.Call = func(caller State, self Value, args []Value) (State, Value) {
		return self.(*Builtin).Fn(caller, self, args)
	}
}

// terminal is a State that ends the trampoline immediately, handing its
// result straight back to whoever called Drive. It is the Go stand-in
// for a "run to completion inline" caller with nothing further to do.
type terminal struct{}

func (terminal) Run(result Value) (State, Value) { return nil, result }

// Terminal is shared since it carries no state of its own.
var Terminal State = terminal{}

// CallSync invokes fn(args...) and drives it to completion in the
// current goroutine, for call sites that need a plain Value back
// rather than a trampoline step (e.g. a sort comparator, §4.5). A
// callee that genuinely suspends (rather than completing synchronously
// or through further tail transitions) will not be waited on here —
// see DESIGN.md for why Map.Sort accepts that tradeoff.
func CallSync(fn Value, args []Value) Value {
	s, v := Call(Terminal, fn, args)
	return Drive(s, v)
}
