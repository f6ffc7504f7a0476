package gates

import "github.com/qpeep/qpeep/internal/qir"

// axis classifies gate kinds by the Pauli basis they are diagonal in.
// Gates diagonal in the same basis commute pairwise.
type axis int

const (
	axisNone axis = iota
	axisX
	axisY
	axisZ
)

func axisOf(kind qir.Kind) axis {
	switch kind {
	case KindX, KindRx, KindRxx:
		return axisX
	case KindY, KindRy:
		return axisY
	case KindZ, KindS, KindSdg, KindT, KindTdg, KindRz, KindCZ:
		return axisZ
	default:
		return axisNone
	}
}

// singleResource reports whether the kind acts on exactly one resource.
// A gate always commutes with another instance of the same single-resource
// kind; the same is NOT true for multi-resource kinds on overlapping but
// distinct resource sets (Swap is the canonical counterexample).
func singleResource(kind qir.Kind) bool {
	return Arity(kind) == 1
}

// blocksCommutation marks kinds that never commute past anything: fences
// and the non-unitary stream controls.
func blocksCommutation(kind qir.Kind) bool {
	switch kind {
	case KindBarrier, KindMeasure, KindDeallocate, qir.KindFlush:
		return true
	default:
		return false
	}
}

// commutation is the shared Commutes implementation for all gate types in
// this package. The receiver gate's registry supplies the commutable-list
// fallback.
func commutation(reg *Registry, a, b qir.Gate) qir.Commutation {
	ak, bk := a.Kind(), b.Kind()
	if blocksCommutation(ak) || blocksCommutation(bk) {
		return qir.CommuteNo
	}
	if axA := axisOf(ak); axA != axisNone && axA == axisOf(bk) {
		return qir.CommuteYes
	}
	if ak == bk && singleResource(ak) {
		return qir.CommuteYes
	}
	if reg != nil {
		for _, seq := range reg.SequencesFor(ak) {
			if seq[0] == bk {
				return qir.CommuteList
			}
		}
	}
	return qir.CommuteNo
}
