package bytecode

// OpCode is a single bytecode instruction tag (§4.2 "Opcode set"). Each
// opcode carries a fixed-shape parameter block decoded by the
// interpreter's dispatch loop.
type OpCode byte

// BytecodeVersion stamps every compiled Chunk so a future loader can
// refuse to run bytecode compiled against an incompatible opcode set.
const BytecodeVersion = 4

const (
	OpNil OpCode = iota
	OpSome
	OpLoad // immediate constant -> Result

	OpPush // Result -> stack top
	OpPop  // discard n stack slots

	OpWith    // scoped slot introduction
	OpWithVar // scoped slot, writable
	OpWithX   // unpack Result into n with-scoped slots

	OpEnter // allocate locals+uninit slots
	OpExit  // pop and clear n slots

	OpLocal  // read slot i
	OpLocalX // read slot i, materializing uninitialized placeholder

	OpVar  // assign reference cell i
	OpVarX // assign n reference cells from unpacked Result
	OpLet  // assign let-slot i
	OpLetI // assign let-slot i, resolving recorded uninitialized refs
	OpLetX // assign n let-slots from unpacked Result

	OpIf
	OpElse
	OpLoop

	OpFor   // begin iteration: call iterate on Result
	OpNext  // advance iterator, branch to successor/exit
	OpValue // fetch iterator's current value into Result
	OpKey   // fetch iterator's current key into Result

	OpCall      // call with n stack-top arguments
	OpConstCall // call immediate fn with n stack-top arguments
	OpAssign    // pop reference, assign derefed Result to it

	OpTry   // set frame.OnError handler
	OpCatch // consume error on error path, demote and push

	OpTupleNew
	OpTupleSet
	OpListNew
	OpListAppend
	OpMapNew
	OpMapInsert
	OpPartialNew
	OpPartialSet

	OpClosure // build closure from closure-info + captured upvalues

	OpSuspend // freeze frame as a suspension, return to caller
	OpResume  // discard top-of-stack value, continue
	OpReturn  // hand Result to frame's caller
)

var names = map[OpCode]string{
	OpNil: "NIL", OpSome: "SOME", OpLoad: "LOAD",
	OpPush: "PUSH", OpPop: "POP",
	OpWith: "WITH", OpWithVar: "WITH_VAR", OpWithX: "WITHX",
	OpEnter: "ENTER", OpExit: "EXIT",
	OpLocal: "LOCAL", OpLocalX: "LOCALX",
	OpVar: "VAR", OpVarX: "VARX", OpLet: "LET", OpLetI: "LETI", OpLetX: "LETX",
	OpIf: "IF", OpElse: "ELSE", OpLoop: "LOOP",
	OpFor: "FOR", OpNext: "NEXT", OpValue: "VALUE", OpKey: "KEY",
	OpCall: "CALL", OpConstCall: "CONST_CALL", OpAssign: "ASSIGN",
	OpTry: "TRY", OpCatch: "CATCH",
	OpTupleNew: "TUPLE_NEW", OpTupleSet: "TUPLE_SET",
	OpListNew: "LIST_NEW", OpListAppend: "LIST_APPEND",
	OpMapNew: "MAP_NEW", OpMapInsert: "MAP_INSERT",
	OpPartialNew: "PARTIAL_NEW", OpPartialSet: "PARTIAL_SET",
	OpClosure: "CLOSURE",
	OpSuspend: "SUSPEND", OpResume: "RESUME", OpReturn: "RETURN",
}

func (op OpCode) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return "UNKNOWN"
}
