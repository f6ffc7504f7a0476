// Package gates implements the qir.Gate capability interface for the
// primitive gate vocabulary qpeep operates on.
//
// The optimizer itself never imports this package; it consumes gates only
// through qir.Gate. Everything here is the collaborator side of that
// contract: the algebra of individual gates (identity, inverse, merge,
// commutation) and the Registry of multi-gate commutable sequences.
//
// Gate values are immutable. Rotation gates normalize their angle into
// [0, 4π) at construction, so two rotations representing the same physical
// operation always compare Equal and a rotation merged with its inverse is
// an identity.
//
// A Set binds gate constructors to one Registry. Gates from different Sets
// still compare Equal when kind and parameters match; only commutation
// verdicts depend on the Set's registered sequences.
package gates
