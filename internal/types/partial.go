package types

// PartialType is a partially applied call built up by PARTIAL_NEW /
// PARTIAL_SET (§4.2): a function value plus a fixed argument vector
// with some positions still open ("holes"), filled left-to-right by
// whatever arguments the eventual call supplies.
var PartialType = &TypeDescriptor{Name: "partial"}

type Partial struct {
	Fn    Value
	Args  []Value
	Holes []bool
}

func (*Partial) Type() *TypeDescriptor { return PartialType }

func NewPartial(fn Value, n int) *Partial {
	args := make([]Value, n)
	holes := make([]bool, n)
	for i := range args {
		args[i] = Nil
		holes[i] = true
	}
	return &Partial{Fn: fn, Args: args, Holes: holes}
}

// Set fills hole i with v, closing it.
func (p *Partial) Set(i int, v Value) {
	if i >= 0 && i < len(p.Args) {
		p.Args[i] = v
		p.Holes[i] = false
	}
}

func init() {
	PartialType.Call = func(caller State, self Value, args []Value) (State, Value) {
		p := self.(*Partial)
		filled := make([]Value, len(p.Args))
		copy(filled, p.Args)
		j := 0
		for i, open := range p.Holes {
			if !open {
				continue
			}
			if j < len(args) {
				filled[i] = args[j]
				j++
			}
		}
		if j < len(args) {
			filled = append(filled, args[j:]...)
		}
		return Call(caller, p.Fn, filled)
	}
}
