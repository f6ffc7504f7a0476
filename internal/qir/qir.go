package qir

import "errors"

// Resource identifies an independently addressable unit (e.g. a qubit).
// Resources are never created or destroyed by this layer; instructions
// merely reference them.
type Resource int

// Kind identifies a gate kind ("X", "Rz", "CZ", ...). Commutable-sequence
// matching compares kinds literally, so two gates of the same kind with
// different parameters share a Kind.
type Kind string

// KindFlush is the well-known kind of the terminal marker gate. When an
// instruction carrying it is ingested, every buffer must fully drain before
// the marker itself is forwarded.
const KindFlush Kind = "Flush"

// Commutation is the verdict of Gate.Commutes.
type Commutation int

const (
	// CommuteNo means the two gates are not known to commute.
	CommuteNo Commutation = iota
	// CommuteYes means the two gates commute directly.
	CommuteYes
	// CommuteList means the two gates are not individually known-commutable
	// but the other gate may open a registered multi-gate sequence that
	// commutes with this gate as a unit.
	CommuteList
)

// String returns the verdict name for diagnostics.
func (c Commutation) String() string {
	switch c {
	case CommuteNo:
		return "no"
	case CommuteYes:
		return "yes"
	case CommuteList:
		return "list"
	default:
		return "unknown"
	}
}

// Gate-algebra sentinel errors. Both are recoverable: the optimizer falls
// back to its commutation/cancellation search when they are returned.
var (
	// ErrNotInvertible is returned by Gate.Inverse when no inverse exists.
	ErrNotInvertible = errors.New("gate is not invertible")
	// ErrNotMergeable is returned by Gate.Merge when the two gates cannot
	// combine into a single gate.
	ErrNotMergeable = errors.New("gates cannot be merged")
)

// Gate is the opaque operation payload of an instruction. The optimizer
// consumes gates exclusively through this capability interface; it never
// inspects gate semantics itself.
//
// Implementations live outside this package (see internal/gates). All
// methods must be pure: a Gate is an immutable value.
type Gate interface {
	// Kind returns the gate kind identifier.
	Kind() Kind

	// IsIdentity reports whether applying the gate is a no-op.
	IsIdentity() bool

	// Inverse returns the exact inverse gate, or ErrNotInvertible.
	Inverse() (Gate, error)

	// Merge combines this gate with other into a single equivalent gate,
	// or returns ErrNotMergeable.
	Merge(other Gate) (Gate, error)

	// Commutes reports whether this gate commutes with other.
	Commutes(other Gate) Commutation

	// CommutableSequences returns the registered gate-kind sequences that,
	// applied in full immediately after this gate on the overlapping
	// resources, commute with this gate as a unit. The returned slices must
	// not be mutated.
	CommutableSequences() [][]Kind

	// FastForwards reports whether an instruction carrying this gate must
	// be forwarded immediately rather than waiting for the window
	// threshold.
	FastForwards() bool

	// Equal reports structural equality with other (same kind, same
	// parameters). Used only for duplicate-skipping position resolution
	// and inverse-pair detection, never for instruction identity.
	Equal(other Gate) bool

	// String returns a printable label including parameters, e.g.
	// "Rz(0.5)".
	String() string
}
