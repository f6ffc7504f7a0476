package gates

import (
	"fmt"
	"math"
	"strconv"

	"github.com/qpeep/qpeep/internal/qir"
)

// Gate kinds of the builtin vocabulary.
const (
	KindX    qir.Kind = "X"
	KindY    qir.Kind = "Y"
	KindZ    qir.Kind = "Z"
	KindH    qir.Kind = "H"
	KindS    qir.Kind = "S"
	KindSdg  qir.Kind = "Sdg"
	KindT    qir.Kind = "T"
	KindTdg  qir.Kind = "Tdg"
	KindRx   qir.Kind = "Rx"
	KindRy   qir.Kind = "Ry"
	KindRz   qir.Kind = "Rz"
	KindRxx  qir.Kind = "Rxx"
	KindCZ   qir.Kind = "CZ"
	KindSwap qir.Kind = "Swap"

	KindBarrier    qir.Kind = "Barrier"
	KindMeasure    qir.Kind = "Measure"
	KindDeallocate qir.Kind = "Deallocate"
)

// twoTurns is the rotation period: rotation gates are 4π-periodic (a 2π
// rotation flips the global phase, which only cancels after two turns).
const twoTurns = 4 * math.Pi

// angleTolerance bounds the float error accepted when comparing angles and
// detecting identity rotations.
const angleTolerance = 1e-12

// Arity returns the number of resources a gate of the given kind acts on.
// Returns -1 for Barrier, which fences any number of resources, and 0 for
// the terminal marker, which touches none.
func Arity(kind qir.Kind) int {
	switch kind {
	case KindX, KindY, KindZ, KindH, KindS, KindSdg, KindT, KindTdg,
		KindRx, KindRy, KindRz, KindMeasure, KindDeallocate:
		return 1
	case KindRxx, KindCZ, KindSwap:
		return 2
	case KindBarrier:
		return -1
	case qir.KindFlush:
		return 0
	default:
		return -1
	}
}

// Rotational reports whether the kind is an angle-parameterized rotation.
func Rotational(kind qir.Kind) bool {
	switch kind {
	case KindRx, KindRy, KindRz, KindRxx:
		return true
	default:
		return false
	}
}

// Known reports whether the kind belongs to the builtin vocabulary.
func Known(kind qir.Kind) bool {
	switch kind {
	case KindX, KindY, KindZ, KindH, KindS, KindSdg, KindT, KindTdg,
		KindRx, KindRy, KindRz, KindRxx, KindCZ, KindSwap,
		KindBarrier, KindMeasure, KindDeallocate, qir.KindFlush:
		return true
	default:
		return false
	}
}

// Set binds gate constructors to one commutable-sequence Registry.
type Set struct {
	reg *Registry
}

// NewSet creates a gate set backed by the given registry. A nil registry
// is replaced with an empty one.
func NewSet(reg *Registry) *Set {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Set{reg: reg}
}

// DefaultSet creates a gate set with no registered commutable sequences.
func DefaultSet() *Set {
	return NewSet(nil)
}

// Registry returns the registry the set's gates consult.
func (s *Set) Registry() *Registry {
	return s.reg
}

// Single-resource and diagonal two-resource gates.

func (s *Set) X() qir.Gate    { return selfInverse{kind: KindX, reg: s.reg} }
func (s *Set) Y() qir.Gate    { return selfInverse{kind: KindY, reg: s.reg} }
func (s *Set) Z() qir.Gate    { return selfInverse{kind: KindZ, reg: s.reg} }
func (s *Set) H() qir.Gate    { return selfInverse{kind: KindH, reg: s.reg} }
func (s *Set) CZ() qir.Gate   { return selfInverse{kind: KindCZ, reg: s.reg} }
func (s *Set) Swap() qir.Gate { return selfInverse{kind: KindSwap, reg: s.reg} }

func (s *Set) S() qir.Gate   { return phase{kind: KindS, inv: KindSdg, reg: s.reg} }
func (s *Set) Sdg() qir.Gate { return phase{kind: KindSdg, inv: KindS, reg: s.reg} }
func (s *Set) T() qir.Gate   { return phase{kind: KindT, inv: KindTdg, reg: s.reg} }
func (s *Set) Tdg() qir.Gate { return phase{kind: KindTdg, inv: KindT, reg: s.reg} }

func (s *Set) Rx(theta float64) qir.Gate  { return rotation{kind: KindRx, angle: normalizeAngle(theta), reg: s.reg} }
func (s *Set) Ry(theta float64) qir.Gate  { return rotation{kind: KindRy, angle: normalizeAngle(theta), reg: s.reg} }
func (s *Set) Rz(theta float64) qir.Gate  { return rotation{kind: KindRz, angle: normalizeAngle(theta), reg: s.reg} }
func (s *Set) Rxx(theta float64) qir.Gate { return rotation{kind: KindRxx, angle: normalizeAngle(theta), reg: s.reg} }

// Stream controls.

func (s *Set) Barrier() qir.Gate    { return fence{reg: s.reg} }
func (s *Set) Measure() qir.Gate    { return fastForwarding{kind: KindMeasure, reg: s.reg} }
func (s *Set) Deallocate() qir.Gate { return fastForwarding{kind: KindDeallocate, reg: s.reg} }
func (s *Set) Flush() qir.Gate      { return flushGate{} }

// Make constructs a gate by kind name, validating the angle parameter:
// rotations require one, everything else rejects one.
func (s *Set) Make(kind qir.Kind, angle *float64) (qir.Gate, error) {
	if !Known(kind) {
		return nil, fmt.Errorf("unknown gate kind %q", kind)
	}
	if Rotational(kind) {
		if angle == nil {
			return nil, fmt.Errorf("gate %s requires an angle", kind)
		}
		switch kind {
		case KindRx:
			return s.Rx(*angle), nil
		case KindRy:
			return s.Ry(*angle), nil
		case KindRz:
			return s.Rz(*angle), nil
		default:
			return s.Rxx(*angle), nil
		}
	}
	if angle != nil {
		return nil, fmt.Errorf("gate %s does not take an angle", kind)
	}
	switch kind {
	case KindX:
		return s.X(), nil
	case KindY:
		return s.Y(), nil
	case KindZ:
		return s.Z(), nil
	case KindH:
		return s.H(), nil
	case KindS:
		return s.S(), nil
	case KindSdg:
		return s.Sdg(), nil
	case KindT:
		return s.T(), nil
	case KindTdg:
		return s.Tdg(), nil
	case KindCZ:
		return s.CZ(), nil
	case KindSwap:
		return s.Swap(), nil
	case KindBarrier:
		return s.Barrier(), nil
	case KindMeasure:
		return s.Measure(), nil
	case KindDeallocate:
		return s.Deallocate(), nil
	default:
		return s.Flush(), nil
	}
}

// normalizeAngle maps an angle into [0, twoTurns).
func normalizeAngle(theta float64) float64 {
	a := math.Mod(theta, twoTurns)
	if a < 0 {
		a += twoTurns
	}
	return a
}

// anglesEqual compares normalized angles, treating 0 and twoTurns as the
// same point on the circle.
func anglesEqual(a, b float64) bool {
	d := math.Abs(a - b)
	return d < angleTolerance || twoTurns-d < angleTolerance
}

// selfInverse implements the parameterless gates that are their own
// inverse: X, Y, Z, H, CZ, Swap.
type selfInverse struct {
	kind qir.Kind
	reg  *Registry
}

func (g selfInverse) Kind() qir.Kind   { return g.kind }
func (g selfInverse) IsIdentity() bool { return false }

func (g selfInverse) Inverse() (qir.Gate, error) { return g, nil }

func (g selfInverse) Merge(other qir.Gate) (qir.Gate, error) {
	return nil, qir.ErrNotMergeable
}

func (g selfInverse) Commutes(other qir.Gate) qir.Commutation {
	return commutation(g.reg, g, other)
}

func (g selfInverse) CommutableSequences() [][]qir.Kind { return g.reg.SequencesFor(g.kind) }
func (g selfInverse) FastForwards() bool                { return false }

func (g selfInverse) Equal(other qir.Gate) bool {
	o, ok := other.(selfInverse)
	return ok && o.kind == g.kind
}

func (g selfInverse) String() string { return string(g.kind) }

// phase implements the parameterless gates whose inverse is a distinct
// kind: S/Sdg and T/Tdg.
type phase struct {
	kind qir.Kind
	inv  qir.Kind
	reg  *Registry
}

func (g phase) Kind() qir.Kind   { return g.kind }
func (g phase) IsIdentity() bool { return false }

func (g phase) Inverse() (qir.Gate, error) {
	return phase{kind: g.inv, inv: g.kind, reg: g.reg}, nil
}

func (g phase) Merge(other qir.Gate) (qir.Gate, error) {
	return nil, qir.ErrNotMergeable
}

func (g phase) Commutes(other qir.Gate) qir.Commutation {
	return commutation(g.reg, g, other)
}

func (g phase) CommutableSequences() [][]qir.Kind { return g.reg.SequencesFor(g.kind) }
func (g phase) FastForwards() bool                { return false }

func (g phase) Equal(other qir.Gate) bool {
	o, ok := other.(phase)
	return ok && o.kind == g.kind
}

func (g phase) String() string { return string(g.kind) }

// rotation implements the angle-parameterized gates Rx, Ry, Rz, Rxx.
// The angle is always stored normalized into [0, twoTurns).
type rotation struct {
	kind  qir.Kind
	angle float64
	reg   *Registry
}

func (g rotation) Kind() qir.Kind { return g.kind }

func (g rotation) IsIdentity() bool {
	return g.angle < angleTolerance || twoTurns-g.angle < angleTolerance
}

func (g rotation) Inverse() (qir.Gate, error) {
	return rotation{kind: g.kind, angle: normalizeAngle(-g.angle), reg: g.reg}, nil
}

func (g rotation) Merge(other qir.Gate) (qir.Gate, error) {
	o, ok := other.(rotation)
	if !ok || o.kind != g.kind {
		return nil, qir.ErrNotMergeable
	}
	return rotation{kind: g.kind, angle: normalizeAngle(g.angle + o.angle), reg: g.reg}, nil
}

func (g rotation) Commutes(other qir.Gate) qir.Commutation {
	return commutation(g.reg, g, other)
}

func (g rotation) CommutableSequences() [][]qir.Kind { return g.reg.SequencesFor(g.kind) }
func (g rotation) FastForwards() bool                { return false }

func (g rotation) Equal(other qir.Gate) bool {
	o, ok := other.(rotation)
	return ok && o.kind == g.kind && anglesEqual(o.angle, g.angle)
}

// Angle returns the normalized rotation angle in [0, 4π).
func (g rotation) Angle() float64 { return g.angle }

func (g rotation) String() string {
	return fmt.Sprintf("%s(%s)", g.kind, strconv.FormatFloat(g.angle, 'g', -1, 64))
}

// fence implements Barrier: an explicit optimization fence that never
// inverts, merges, or commutes.
type fence struct {
	reg *Registry
}

func (g fence) Kind() qir.Kind   { return KindBarrier }
func (g fence) IsIdentity() bool { return false }

func (g fence) Inverse() (qir.Gate, error) { return nil, qir.ErrNotInvertible }

func (g fence) Merge(other qir.Gate) (qir.Gate, error) {
	return nil, qir.ErrNotMergeable
}

func (g fence) Commutes(other qir.Gate) qir.Commutation { return qir.CommuteNo }
func (g fence) CommutableSequences() [][]qir.Kind       { return nil }
func (g fence) FastForwards() bool                      { return false }

func (g fence) Equal(other qir.Gate) bool {
	_, ok := other.(fence)
	return ok
}

func (g fence) String() string { return string(KindBarrier) }

// fastForwarding implements Measure and Deallocate: non-unitary operations
// whose enclosing instruction must be forwarded immediately.
type fastForwarding struct {
	kind qir.Kind
	reg  *Registry
}

func (g fastForwarding) Kind() qir.Kind   { return g.kind }
func (g fastForwarding) IsIdentity() bool { return false }

func (g fastForwarding) Inverse() (qir.Gate, error) { return nil, qir.ErrNotInvertible }

func (g fastForwarding) Merge(other qir.Gate) (qir.Gate, error) {
	return nil, qir.ErrNotMergeable
}

func (g fastForwarding) Commutes(other qir.Gate) qir.Commutation { return qir.CommuteNo }
func (g fastForwarding) CommutableSequences() [][]qir.Kind       { return nil }
func (g fastForwarding) FastForwards() bool                      { return true }

func (g fastForwarding) Equal(other qir.Gate) bool {
	o, ok := other.(fastForwarding)
	return ok && o.kind == g.kind
}

func (g fastForwarding) String() string { return string(g.kind) }

// flushGate is the terminal marker gate.
type flushGate struct{}

func (g flushGate) Kind() qir.Kind   { return qir.KindFlush }
func (g flushGate) IsIdentity() bool { return false }

func (g flushGate) Inverse() (qir.Gate, error) { return nil, qir.ErrNotInvertible }

func (g flushGate) Merge(other qir.Gate) (qir.Gate, error) {
	return nil, qir.ErrNotMergeable
}

func (g flushGate) Commutes(other qir.Gate) qir.Commutation { return qir.CommuteNo }
func (g flushGate) CommutableSequences() [][]qir.Kind       { return nil }
func (g flushGate) FastForwards() bool                      { return true }

func (g flushGate) Equal(other qir.Gate) bool {
	_, ok := other.(flushGate)
	return ok
}

func (g flushGate) String() string { return "Flush" }
