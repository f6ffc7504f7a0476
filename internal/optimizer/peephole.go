package optimizer

import "github.com/qpeep/qpeep/internal/qir"

// optimize scans the queue for res from position 0 up to limit, eliminating
// identities and attempting cancellation and fusion, and returns the
// (possibly reduced) number of still-valid positions up to which the scan
// applies.
//
// Per position i:
//  1. An identity gate is deleted (synchronized across all its resources)
//     and the scan restarts at 0 with limit shrunk by 1.
//  2. Otherwise the scan searches forward for a position i+x+1 whose
//     instruction is the exact inverse of, or mergeable with, the one at i,
//     advancing x across instructions that commute with i directly or as a
//     registered commutable sequence. A hit additionally requires the
//     commutation gate to hold on every other resource the instruction at
//     i touches. Cancellation deletes both instructions (limit -= 2);
//     fusion deletes the later and replaces the earlier with the merge
//     (limit -= 1); either way the scan restarts at 0.
//  3. With no site found before limit, the scan advances to i+1.
//
// Search order is strictly earliest-i, then smallest-x: the first valid
// cancellation wins over a later, possibly larger, fusion opportunity.
func (e *Engine) optimize(res qir.Resource, limit int) int {
	if q := e.table[res]; limit > len(q) {
		limit = len(q)
	}

	i := 0
	for i < limit {
		q := e.table[res]
		inst := q[i]

		if inst.Gate.IsIdentity() {
			e.deleteAt(res, i)
			i = 0
			limit--
			continue
		}

		// A missing inverse (ErrNotInvertible) only disables the
		// cancellation attempt at this site; fusion and commutation
		// searches still run.
		inv, invErr := inst.Gate.Inverse()

		x := 0
		edited := false
	search:
		for i+x+1 < limit {
			cand := q[i+x+1]

			// Exact inverse: cancel the pair. Delete the later one first
			// so the earlier index stays valid.
			if invErr == nil && cand.Gate.Equal(inv) && sameGroups(inst, cand) &&
				e.commutationHolds(res, i, i+x+1) {
				e.deleteAt(res, i+x+1)
				e.deleteAt(res, i)
				limit -= 2
				edited = true
				break
			}

			// Fusion: replace the earlier with the merge, delete the later.
			if merged, err := inst.Gate.Merge(cand.Gate); err == nil &&
				sameGroups(inst, cand) && e.commutationHolds(res, i, i+x+1) {
				e.deleteAt(res, i+x+1)
				e.replaceAt(res, i, qir.NewInstruction(merged, inst.Groups...))
				limit--
				edited = true
				break
			}

			switch inst.Gate.Commutes(cand.Gate) {
			case qir.CommuteYes:
				x++
			case qir.CommuteList:
				n := matchSequence(inst.Gate, q, i+x+1, limit)
				if n == 0 {
					break search
				}
				x += n
			default:
				break search
			}
		}

		if edited {
			i = 0
			continue
		}
		i++
	}
	return limit
}

// commutationHolds checks the commutation gate for a cancellation or fusion
// between the instructions at positions i and j of res's queue: every
// instruction strictly between them, as observed from every OTHER resource
// the instruction at i touches, must commute with it, directly or as a
// registered commutable sequence fitting strictly before the partner.
//
// res itself is excluded: the peephole scan already established the gate
// there while advancing x.
func (e *Engine) commutationHolds(res qir.Resource, i, j int) bool {
	q := e.table[res]
	inst, partner := q[i], q[j]

	for _, r := range inst.Resources() {
		if r == res {
			continue
		}
		qr := e.table[r]
		pi, ok := positionOf(qr, inst)
		if !ok {
			e.logger.Warn("inconsistent queue during commutation check; refusing site",
				"resource", int(r), "instruction", inst.String())
			return false
		}
		pj, ok := positionOf(qr, partner)
		if !ok || pj < pi {
			e.logger.Warn("inconsistent queue during commutation check; refusing site",
				"resource", int(r), "instruction", partner.String())
			return false
		}

		k := pi + 1
		for k < pj {
			switch inst.Gate.Commutes(qr[k].Gate) {
			case qir.CommuteYes:
				k++
			case qir.CommuteList:
				n := matchSequence(inst.Gate, qr, k, pj)
				if n == 0 {
					return false
				}
				k += n
			default:
				return false
			}
		}
	}
	return true
}

// matchSequence matches the gate kinds at q[start:limit] against each
// commutable sequence registered for g, and returns the length of the
// first fully matched candidate, or 0 when none matches.
//
// Candidates arrive ordered by increasing length, so the shortest fully
// matched sequence wins; a candidate that would run past limit can never
// match.
func matchSequence(g qir.Gate, q []*qir.Instruction, start, limit int) int {
	for _, seq := range g.CommutableSequences() {
		if start+len(seq) > limit {
			continue
		}
		matched := true
		for y, kind := range seq {
			if q[start+y].Gate.Kind() != kind {
				matched = false
				break
			}
		}
		if matched {
			return len(seq)
		}
	}
	return 0
}

// sameGroups reports whether two instructions target identical resource
// groups. Cancellation and fusion both require it: the pair must be the
// same operation shape, not merely the same gate.
func sameGroups(a, b *qir.Instruction) bool {
	if len(a.Groups) != len(b.Groups) {
		return false
	}
	for i, group := range a.Groups {
		if len(group) != len(b.Groups[i]) {
			return false
		}
		for j, r := range group {
			if r != b.Groups[i][j] {
				return false
			}
		}
	}
	return true
}
