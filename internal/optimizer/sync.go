package optimizer

import "github.com/qpeep/qpeep/internal/qir"

// Cross-resource synchronizer: deleting or replacing an instruction must be
// applied atomically across every resource queue it occupies, or the
// cross-list consistency invariant is violated.
//
// Position resolution matches by identity. Because duplicate instructions
// with identical gate and resources are legal, the resolver counts how many
// equal-valued instructions precede the target in the queue it was named
// through, then skips that many equal-valued matches in every other queue.
//
// Resolution can legitimately fail for a resource whose queue was already
// drained independently (shutdown-time draining races between queues).
// That is a recoverable anomaly: it is logged, the resource's mutation is
// skipped, and processing continues.

// deleteAt removes the instruction at table[res][pos] from every resource
// queue it occupies.
func (e *Engine) deleteAt(res qir.Resource, pos int) {
	inst := e.table[res][pos]
	resources, indices := e.resolveAll(res, pos)
	for k, r := range resources {
		idx := indices[k]
		if idx < 0 {
			e.logger.Warn("inconsistent queue during delete; skipping resource",
				"resource", int(r), "position", pos, "instruction", inst.String())
			continue
		}
		q := e.table[r]
		e.table[r] = append(q[:idx:idx], q[idx+1:]...)
	}
}

// replaceAt substitutes repl for the instruction at table[res][pos] in
// every resource queue the original occupies.
func (e *Engine) replaceAt(res qir.Resource, pos int, repl *qir.Instruction) {
	inst := e.table[res][pos]
	resources, indices := e.resolveAll(res, pos)
	for k, r := range resources {
		idx := indices[k]
		if idx < 0 {
			e.logger.Warn("inconsistent queue during replace; skipping resource",
				"resource", int(r), "position", pos, "instruction", inst.String())
			continue
		}
		e.table[r][idx] = repl
	}
}

// resolveAll computes, for the instruction at table[res][pos], its position
// in the queue of every resource it touches. All positions are resolved
// before any mutation so the duplicate counts stay consistent. A position
// of -1 marks a resource whose queue no longer holds the instruction.
func (e *Engine) resolveAll(res qir.Resource, pos int) ([]qir.Resource, []int) {
	inst := e.table[res][pos]
	resources := inst.Resources()

	// Count earlier duplicates so equal-valued instructions are matched
	// positionally, never by value alone.
	skip := 0
	for _, prev := range e.table[res][:pos] {
		if prev.EqualValue(inst) {
			skip++
		}
	}

	indices := make([]int, len(resources))
	for k, r := range resources {
		indices[k] = nthEqualValue(e.table[r], inst, skip)
	}
	return resources, indices
}

// nthEqualValue returns the index of the (skip+1)-th instruction in q that
// compares EqualValue to inst, or -1 when q holds fewer matches.
func nthEqualValue(q []*qir.Instruction, inst *qir.Instruction, skip int) int {
	seen := 0
	for i, c := range q {
		if !c.EqualValue(inst) {
			continue
		}
		if seen == skip {
			return i
		}
		seen++
	}
	return -1
}
