package interp

import "sentracore/internal/types"

// SuspensionType is the type of the value SUSPEND wraps a Frame in
// (§4.3): calling a suspension resumes the frozen computation with the
// call's first argument as the resumed value; reading key/value off it
// forwards to the frame's topmost iteration slot. It has no Iterate or
// Next hook, so FOR cannot iterate a suspension directly.
var SuspensionType = &types.TypeDescriptor{Name: "suspension"}

// suspend freezes f as a first-class resumable value and returns it;
// the frame itself is unchanged in memory, it is only wrapped.
func (f *Frame) suspend() types.Value {
	return &suspension{frame: f}
}

type suspension struct {
	frame *Frame
}

func (*suspension) Type() *types.TypeDescriptor { return SuspensionType }

func init() {
	SuspensionType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		s := self.(*suspension)
		var resumeWith types.Value = types.Nil
		if len(args) > 0 {
			resumeWith = args[0]
		}
		s.frame.caller = caller
		return s.frame.Run(resumeWith)
	}
	SuspensionType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		s := self.(*suspension)
		if len(s.frame.iterStack) == 0 {
			return caller, types.Nil
		}
		top := s.frame.iterStack[len(s.frame.iterStack)-1]
		td := top.iter.Type()
		return td.Key(caller, top.iter)
	}
	SuspensionType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		s := self.(*suspension)
		if len(s.frame.iterStack) == 0 {
			return caller, types.Nil
		}
		top := s.frame.iterStack[len(s.frame.iterStack)-1]
		td := top.iter.Type()
		return td.Value(caller, top.iter)
	}
}
