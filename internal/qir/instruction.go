package qir

import (
	"fmt"
	"strings"
)

// Instruction is a gate application together with the ordered resource
// groups it targets. A group is itself an ordered sequence of resources,
// mirroring how multi-resource and multi-target operations are expressed
// (e.g. a two-qubit gate targets one group of two resources).
//
// Instruction identity is pointer identity: two *Instruction values are
// "the same instruction" only if they are the same pointer. EqualValue
// provides the structural comparison used for duplicate-skipping position
// resolution.
type Instruction struct {
	Gate   Gate
	Groups [][]Resource
}

// NewInstruction builds an instruction over copies of the given groups, so
// callers cannot mutate the instruction's targets after construction.
func NewInstruction(gate Gate, groups ...[]Resource) *Instruction {
	copied := make([][]Resource, len(groups))
	for i, g := range groups {
		copied[i] = make([]Resource, len(g))
		copy(copied[i], g)
	}
	return &Instruction{Gate: gate, Groups: copied}
}

// Resources returns the flattened list of resources the instruction
// touches, in group order, with duplicates removed (first occurrence wins).
func (in *Instruction) Resources() []Resource {
	seen := make(map[Resource]bool)
	var out []Resource
	for _, group := range in.Groups {
		for _, r := range group {
			if seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// Touches reports whether the instruction acts on the given resource.
func (in *Instruction) Touches(r Resource) bool {
	for _, group := range in.Groups {
		for _, g := range group {
			if g == r {
				return true
			}
		}
	}
	return false
}

// EqualValue reports structural equality: same gate (per Gate.Equal) and
// identical resource groups. Distinct instructions may compare equal; the
// synchronizer counts such duplicates to resolve positions correctly.
func (in *Instruction) EqualValue(other *Instruction) bool {
	if in == other {
		return true
	}
	if other == nil {
		return false
	}
	if !in.Gate.Equal(other.Gate) {
		return false
	}
	if len(in.Groups) != len(other.Groups) {
		return false
	}
	for i, group := range in.Groups {
		if len(group) != len(other.Groups[i]) {
			return false
		}
		for j, r := range group {
			if r != other.Groups[i][j] {
				return false
			}
		}
	}
	return true
}

// Terminal reports whether the instruction is the terminal marker.
func (in *Instruction) Terminal() bool {
	return in.Gate.Kind() == KindFlush
}

// String renders the instruction for logs and traces, e.g.
// "Rz(0.5) [[1]]" or "CZ [[0 1]]".
func (in *Instruction) String() string {
	if len(in.Groups) == 0 {
		return in.Gate.String()
	}
	var b strings.Builder
	b.WriteString(in.Gate.String())
	b.WriteString(" [")
	for i, group := range in.Groups {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", group)
	}
	b.WriteByte(']')
	return b.String()
}
