package types

// NamesCarrier is the marker a keyword-argument label list (the
// container package's Names value) implements, so this package can
// recognize it in an argument vector without importing container
// (which itself depends on types — see DESIGN.md).
type NamesCarrier interface {
	Value
	FieldNames() []string
}

// ClassMetaType is the type of every class value produced by class(...)
// (§6 "Method signature for instantiation"). Calling a class value
// constructs an instance of it.
var ClassMetaType = &TypeDescriptor{Name: "class"}

type Class struct {
	Desc   *TypeDescriptor // type descriptor assigned to instances
	Name   string
	Parent *Class
	Fields []string
}

func (*Class) Type() *TypeDescriptor { return ClassMetaType }

// NewClass builds a class value and its instance type descriptor.
// Instance fields are the parent's fields (if any) followed by this
// class's own, matching single-inheritance field layout.
func NewClass(name string, parent *Class, fields []string) *Class {
	all := append([]string{}, fieldsOf(parent)...)
	all = append(all, fields...)
	var parentDesc *TypeDescriptor
	if parent != nil {
		parentDesc = parent.Desc
	}
	desc := &TypeDescriptor{Name: name, Parent: parentDesc}
	c := &Class{Desc: desc, Name: name, Parent: parent, Fields: all}
	desc.Call = nil // instances are data values, not callables, by default
	return c
}

func fieldsOf(c *Class) []string {
	if c == nil {
		return nil
	}
	return c.Fields
}

// Instance is a value constructed by calling a Class.
type Instance struct {
	Desc   *TypeDescriptor
	Class  *Class
	Fields map[string]Value
}

func (i *Instance) Type() *TypeDescriptor { return i.Desc }

func init() {
	ClassMetaType.Call = func(caller State, self Value, args []Value) (State, Value) {
		c := self.(*Class)
		inst := &Instance{Desc: c.Desc, Class: c, Fields: make(map[string]Value, len(c.Fields))}
		for _, f := range c.Fields {
			inst.Fields[f] = Nil
		}

		// Split the argument vector at the first Names marker; field
		// lookups by position come before it, by label come after
		// (§4.1 "Keyword arguments travel in-band").
		pos := args
		namesAt := -1
		for i, a := range args {
			if _, ok := a.(NamesCarrier); ok {
				namesAt = i
				break
			}
		}
		if namesAt >= 0 {
			pos = args[:namesAt]
		}
		for i, v := range pos {
			if i >= len(c.Fields) {
				break // extra positional args beyond arity are dropped
			}
			inst.Fields[c.Fields[i]] = Deref(v)
		}
		if namesAt >= 0 {
			names := args[namesAt].(NamesCarrier).FieldNames()
			values := args[namesAt+1:]
			for i, label := range names {
				if i >= len(values) {
					break
				}
				if _, ok := inst.Fields[label]; !ok {
					return caller, NewError(ValueError, "unknown field "+label)
				}
				inst.Fields[label] = Deref(values[i])
			}
		}
		return caller, inst
	}
}
