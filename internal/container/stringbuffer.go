package container

import "sentracore/internal/types"

// StringBufferType is an append-only byte builder used as the sink for
// string concatenation and for buffering output before it is handed to
// an I/O collaborator (§3 "StringBuffer").
var StringBufferType = &types.TypeDescriptor{Name: "string-buffer"}

type StringBuffer struct {
	chunks [][]byte
	length int
}

func (*StringBuffer) Type() *types.TypeDescriptor { return StringBufferType }

func NewStringBuffer() *StringBuffer { return &StringBuffer{} }

// WriteString appends a copy of s's bytes as a new chunk.
func (b *StringBuffer) WriteString(s string) {
	b.chunks = append(b.chunks, []byte(s))
	b.length += len(s)
}

func (b *StringBuffer) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	b.chunks = append(b.chunks, cp)
	b.length += len(cp)
	return len(p), nil
}

func (b *StringBuffer) Len() int { return b.length }

// String concatenates every chunk into a single string. Cheap to call
// once; repeated calls during incremental building are the caller's
// business to avoid.
func (b *StringBuffer) String() string {
	out := make([]byte, 0, b.length)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return string(out)
}

// EachChunk calls fn with each appended chunk in order, stopping early
// if fn returns false. This is the hook I/O sinks use to drain a buffer
// without forcing a single contiguous allocation first.
func (b *StringBuffer) EachChunk(fn func([]byte) bool) {
	for _, c := range b.chunks {
		if !fn(c) {
			return
		}
	}
}

func init() {
	StringBufferType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		b := self.(*StringBuffer)
		for _, a := range args {
			b.WriteString(ToDisplayString(types.Deref(a)))
		}
		return caller, b
	}
}
