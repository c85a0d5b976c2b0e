package bytecode

// DebugInfo carries the source position for one instruction, so error
// traces (§4.7) can report "<source>:<line>" without re-deriving it
// from the compiler's (external, out of scope) line table.
type DebugInfo struct {
	Line     int
	Column   int
	Source   string
	Function string
}

// ClosureInfo is the immutable, shared part of a closure: its entry
// point, frame shape and upvalue count (§4.1 "Closure"). Instances are
// stored in a Chunk's constant pool and referenced by CLOSURE's
// immediate operand.
type ClosureInfo struct {
	Entry      int
	FrameSize  int
	Arity      int
	NumUpvalue int
	Name       string
}

// Chunk is a compiled unit: a flat instruction stream, its constant
// pool, and a parallel per-instruction debug table. The surface syntax
// parser and compiler that would normally produce a Chunk are out of
// scope here (§1); callers assemble one directly, the way the bundled
// CLI and this package's tests do.
type Chunk struct {
	Version   int
	Code      []byte
	Constants []interface{}
	Debug     []DebugInfo
}

func NewChunk() *Chunk {
	return &Chunk{Version: BytecodeVersion}
}

func (c *Chunk) WriteOp(op OpCode) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op))
	c.Debug = append(c.Debug, DebugInfo{})
	return pos
}

func (c *Chunk) WriteOpWithDebug(op OpCode, debug DebugInfo) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op))
	c.Debug = append(c.Debug, debug)
	return pos
}

func (c *Chunk) WriteByte(b byte) {
	c.Code = append(c.Code, b)
	c.Debug = append(c.Debug, DebugInfo{})
}

func (c *Chunk) WriteByteWithDebug(b byte, debug DebugInfo) {
	c.Code = append(c.Code, b)
	c.Debug = append(c.Debug, debug)
}

// WriteUint16 appends a big-endian 16-bit operand, used for jump
// targets and any index wider than a byte.
func (c *Chunk) WriteUint16(n uint16) {
	c.WriteByte(byte(n >> 8))
	c.WriteByte(byte(n))
}

func (c *Chunk) ReadUint16(ip int) uint16 {
	return uint16(c.Code[ip])<<8 | uint16(c.Code[ip+1])
}

// EmitJump writes a placeholder 16-bit target after op and returns its
// offset, to be filled in later by PatchJump once the true destination
// is known — the usual two-pass approach for forward branches (IF,
// ELSE, TRY, FOR, NEXT all target a not-yet-emitted successor).
func (c *Chunk) EmitJump(op OpCode) int {
	c.WriteOp(op)
	offset := len(c.Code)
	c.WriteUint16(0)
	return offset
}

func (c *Chunk) PatchJump(offset int) {
	c.PatchJumpTo(offset, len(c.Code))
}

// PatchJumpTo fills the 16-bit operand at offset (as returned by
// EmitJump) with an explicit target, for jumps whose destination isn't
// "here" at patch time — e.g. a NEXT/FOR loop-exit shared by several
// instructions, patched together once the exit label is known.
func (c *Chunk) PatchJumpTo(offset, target int) {
	c.Code[offset] = byte(target >> 8)
	c.Code[offset+1] = byte(target)
}

func (c *Chunk) AddConstant(val interface{}) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) GetDebugInfo(ip int) DebugInfo {
	if ip >= 0 && ip < len(c.Debug) {
		return c.Debug[ip]
	}
	return DebugInfo{}
}
