package gates

import (
	"fmt"
	"sort"

	"github.com/qpeep/qpeep/internal/qir"
)

// Registry holds the registered commutable gate sequences.
//
// A sequence registered for gate kind G asserts: the sequence, applied in
// full immediately after a G gate on the overlapping resources, commutes
// with G as a unit, even though its members may not individually commute
// with G. This captures domain-specific composite identities (e.g. a
// sequence equivalent to a net identity on the shared resource) without the
// optimizer knowing any gate semantics.
//
// Registry is populated at construction time (directly or from a ruleset)
// and read-only afterwards; it is not safe for concurrent mutation.
type Registry struct {
	sequences map[qir.Kind][][]qir.Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sequences: make(map[qir.Kind][][]qir.Kind)}
}

// Register records seq as commutable with gates of the given kind.
// The sequence must be non-empty.
//
// Candidates for a kind are kept ordered by increasing length, ties in
// registration order. The optimizer's sequence matcher takes the FIRST
// fully matched candidate, so the shortest match always wins.
func (r *Registry) Register(kind qir.Kind, seq []qir.Kind) error {
	if kind == "" {
		return fmt.Errorf("register commutable sequence: empty gate kind")
	}
	if len(seq) == 0 {
		return fmt.Errorf("register commutable sequence for %s: empty sequence", kind)
	}
	copied := make([]qir.Kind, len(seq))
	copy(copied, seq)
	r.sequences[kind] = append(r.sequences[kind], copied)
	sort.SliceStable(r.sequences[kind], func(i, j int) bool {
		return len(r.sequences[kind][i]) < len(r.sequences[kind][j])
	})
	return nil
}

// SequencesFor returns the commutable sequences registered for the given
// gate kind, ordered by increasing length. The returned slices must not be
// mutated. Returns nil when nothing is registered.
func (r *Registry) SequencesFor(kind qir.Kind) [][]qir.Kind {
	return r.sequences[kind]
}

// Kinds returns the gate kinds that have registered sequences, sorted.
func (r *Registry) Kinds() []qir.Kind {
	kinds := make([]qir.Kind, 0, len(r.sequences))
	for k := range r.sequences {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len returns the total number of registered sequences.
func (r *Registry) Len() int {
	n := 0
	for _, seqs := range r.sequences {
		n += len(seqs)
	}
	return n
}
