// Package qir provides the foundational instruction-stream types for qpeep.
//
// This package contains type definitions only. All other internal packages
// import qir; qir imports nothing internal. This ensures the IR remains the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Gate algebra is opaque: the optimizer consumes gates exclusively
//     through the Gate capability interface (identity/inverse/merge/commute)
//   - Instruction identity is pointer identity, never structural equality.
//     Duplicate instructions with identical gate and resources are legal and
//     must be distinguished positionally.
//   - Gate-algebra failures are sentinel errors checked with errors.Is,
//     never panics. They are recoverable at the point of use.
package qir
