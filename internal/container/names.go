package container

import "sentracore/internal/types"

// NamesType is the in-band marker for keyword arguments (§4.1): a
// Names value in an argument vector is followed by one value per
// label, and implements types.NamesCarrier so class construction (and
// any other Call implementation) can recognize it without this package
// importing types' callers or vice versa.
var NamesType = &types.TypeDescriptor{Name: "names"}

type Names struct {
	Labels []string
}

func NewNames(labels []string) *Names { return &Names{Labels: labels} }

func (*Names) Type() *types.TypeDescriptor { return NamesType }

func (n *Names) FieldNames() []string { return n.Labels }

var _ types.NamesCarrier = (*Names)(nil)
