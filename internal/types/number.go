package types

import (
	"fmt"
	"math"
)

// NumberType is the common abstract parent of Real and Integer.
var NumberType = &TypeDescriptor{Name: "number"}

// RealType is the double-precision subtype of number.
var RealType = &TypeDescriptor{Name: "real", Parent: NumberType}

// IntType is the integer subtype of real. Per §3, an integer value also
// carries function-call semantics: calling an integer indexes into its
// argument list.
var IntType = &TypeDescriptor{Name: "integer", Parent: RealType}

// Real is a boxed double.
type Real struct{ V float64 }

func (Real) Type() *TypeDescriptor { return RealType }

// Int is a boxed integer.
type Int struct{ V int64 }

func (Int) Type() *TypeDescriptor { return IntType }

func init() {
	RealType.Hash = func(v Value, _ *HashChain) uint64 {
		return math.Float64bits(v.(Real).V)
	}
	RealType.Compare = func(a, b Value) int {
		x := asFloat(a)
		y, ok := asFloatOK(b)
		if !ok {
			return 1
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}

	IntType.Hash = func(v Value, _ *HashChain) uint64 {
		return uint64(v.(Int).V)
	}
	IntType.Compare = func(a, b Value) int {
		if y, ok := b.(Int); ok {
			x := a.(Int).V
			switch {
			case x < y.V:
				return -1
			case x > y.V:
				return 1
			default:
				return 0
			}
		}
		return RealType.Compare(Real{asFloat(a)}, b)
	}
	// Calling an integer indexes into the argument vector: i(args...)
	// returns args[i] (1-based, per the source language's indexing
	// convention) or nil when out of range.
	IntType.Call = func(caller State, self Value, args []Value) (State, Value) {
		i := self.(Int).V
		if i < 1 || int(i) > len(args) {
			return caller, Nil
		}
		return caller, args[i-1]
	}
}

func asFloat(v Value) float64 {
	switch n := v.(type) {
	case Int:
		return float64(n.V)
	case Real:
		return n.V
	default:
		return math.NaN()
	}
}

func asFloatOK(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n.V), true
	case Real:
		return n.V, true
	default:
		return 0, false
	}
}

// Add, Sub, Mul, Div, Mod implement arithmetic on the builtin number
// types for Go-side callers such as builtins (there are no arithmetic
// opcodes); integer operands stay integers, any real operand promotes
// the result to real.
func Add(a, b Value) Value { return numOp(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y }) }
func Sub(a, b Value) Value { return numOp(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Value) Value { return numOp(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }) }

func Div(a, b Value) Value {
	ai, aIsInt := a.(Int)
	bi, bIsInt := b.(Int)
	if aIsInt && bIsInt {
		if bi.V == 0 {
			return NewError(RangeError, "division by zero")
		}
		if ai.V%bi.V == 0 {
			return Int{ai.V / bi.V}
		}
		return Real{float64(ai.V) / float64(bi.V)}
	}
	x, ok1 := asFloatOK(a)
	y, ok2 := asFloatOK(b)
	if !ok1 || !ok2 {
		return NewError(TypeError, "div expects numbers")
	}
	if y == 0 {
		return NewError(RangeError, "division by zero")
	}
	return Real{x / y}
}

func Mod(a, b Value) Value {
	ai, aIsInt := a.(Int)
	bi, bIsInt := b.(Int)
	if aIsInt && bIsInt {
		if bi.V == 0 {
			return NewError(RangeError, "modulo by zero")
		}
		return Int{ai.V % bi.V}
	}
	x, ok1 := asFloatOK(a)
	y, ok2 := asFloatOK(b)
	if !ok1 || !ok2 {
		return NewError(TypeError, "mod expects numbers")
	}
	return Real{math.Mod(x, y)}
}

func numOp(a, b Value, iop func(int64, int64) int64, fop func(float64, float64) float64) Value {
	ai, aIsInt := a.(Int)
	bi, bIsInt := b.(Int)
	if aIsInt && bIsInt {
		return Int{iop(ai.V, bi.V)}
	}
	x, ok1 := asFloatOK(a)
	y, ok2 := asFloatOK(b)
	if !ok1 || !ok2 {
		return NewError(TypeError, "arithmetic expects numbers")
	}
	return Real{fop(x, y)}
}

func Negate(a Value) Value {
	switch n := a.(type) {
	case Int:
		return Int{-n.V}
	case Real:
		return Real{-n.V}
	default:
		return NewError(TypeError, "negate expects a number")
	}
}

func NumberString(v Value) string {
	switch n := v.(type) {
	case Int:
		return fmt.Sprintf("%d", n.V)
	case Real:
		return fmt.Sprintf("%g", n.V)
	default:
		return ""
	}
}
