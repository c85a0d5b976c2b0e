// Package ident provides a uuid() builtin (§4.8 "ident"). No other
// package in this module calls it; tasks sets and db connections carry
// no name.
package ident

import (
	"github.com/google/uuid"

	"sentracore/internal/types"
)

// UUID is a builtin value a script or another stdlib package wires in
// wherever a fresh identifier is needed.
var UUID = types.NewBuiltin("uuid", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
	return caller, types.String{V: uuid.NewString()}
})

// Register installs UUID's type into reg, so embedders wiring
// stdlib/* modules uniformly don't need a special case for ident.
func Register(reg *types.Registry) {
	reg.RegisterType(UUID.Type())
}
