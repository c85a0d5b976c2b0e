package types

// MethodType is the type of a method value: a named, multiply-
// dispatched callable whose implementations are ranked by the external
// Resolver (§4.1).
var MethodType = &TypeDescriptor{Name: "method"}

type Method struct {
	Name     string
	Resolver Resolver
}

func (*Method) Type() *TypeDescriptor { return MethodType }

// NewMethod creates a named method bound to a resolver. The resolver is
// the embedder's external method-registration machinery; the core only
// ever calls back into it through Call.
func NewMethod(name string, resolver Resolver) *Method {
	return &Method{Name: name, Resolver: resolver}
}

func init() {
	MethodType.Call = func(caller State, self Value, args []Value) (State, Value) {
		m := self.(*Method)
		if m.Resolver == nil {
			return caller, NewError(TypeError, "method "+m.Name+" has no resolver")
		}
		argTypes := make([]*TypeDescriptor, len(args))
		for i, a := range args {
			argTypes[i] = Deref(a).Type()
		}
		impl, ok := m.Resolver.Resolve(self, argTypes)
		if !ok {
			return caller, NewError(TypeError, "no matching implementation for method "+m.Name)
		}
		return Call(caller, impl, args)
	}
}
