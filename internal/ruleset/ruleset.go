// Package ruleset loads declarative optimizer configuration from CUE files:
// the window size and the commutable gate sequences registered with the gate
// registry.
package ruleset

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/optimizer"
	"github.com/qpeep/qpeep/internal/qir"
)

// Error code constants, stable across CLI surfaces.
const (
	ErrCodeNotFound       = "R001" // Ruleset file not found / unreadable
	ErrCodeBuildFailed    = "R002" // CUE compile/validation failed
	ErrCodeInvalidWindow  = "R003" // Window not a positive integer
	ErrCodeInvalidCommute = "R004" // Malformed commute entry
	ErrCodeUnknownGate    = "R005" // Gate kind not in the gate set
)

// LoadError is an error produced while loading a ruleset file, carrying a
// stable code and, when available, the CUE source position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Ruleset is the decoded optimizer configuration.
type Ruleset struct {
	// Window is the per-resource buffering window m.
	Window int
	// Registry holds the commutable sequences declared by the file.
	Registry *gates.Registry
}

// Default returns the configuration used when no ruleset file is given.
func Default() *Ruleset {
	return &Ruleset{
		Window:   optimizer.DefaultWindowSize,
		Registry: gates.NewRegistry(),
	}
}

// Gates returns a gate set bound to the ruleset's registry.
func (r *Ruleset) Gates() *gates.Set {
	return gates.NewSet(r.Registry)
}

// Load reads and validates a single CUE ruleset file.
//
// Schema:
//
//	window?: int & >0
//	commute?: [...{gate: string, with: [...[...string]]}]
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading ruleset: %v", err)}
	}
	return Parse(data, path)
}

// Parse decodes CUE source. filename is used for positions only.
func Parse(data []byte, filename string) (*Ruleset, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("validating CUE value: %v", err)}
	}

	rs := Default()

	windowVal := value.LookupPath(cue.ParsePath("window"))
	if windowVal.Exists() {
		w, err := windowVal.Int64()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidWindow, Message: fmt.Sprintf("window: %v", err), Pos: windowVal.Pos()}
		}
		if w < 1 {
			return nil, &LoadError{Code: ErrCodeInvalidWindow, Message: fmt.Sprintf("window must be positive, got %d", w), Pos: windowVal.Pos()}
		}
		rs.Window = int(w)
	}

	commuteVal := value.LookupPath(cue.ParsePath("commute"))
	if commuteVal.Exists() {
		iter, err := commuteVal.List()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("commute: %v", err), Pos: commuteVal.Pos()}
		}
		for iter.Next() {
			if err := decodeCommuteEntry(rs.Registry, iter.Value()); err != nil {
				return nil, err
			}
		}
	}

	return rs, nil
}

// decodeCommuteEntry registers one {gate, with} entry's sequences.
func decodeCommuteEntry(reg *gates.Registry, entry cue.Value) error {
	gateVal := entry.LookupPath(cue.ParsePath("gate"))
	if !gateVal.Exists() {
		return &LoadError{Code: ErrCodeInvalidCommute, Message: "commute entry missing gate", Pos: entry.Pos()}
	}
	gate, err := gateVal.String()
	if err != nil {
		return &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("gate: %v", err), Pos: gateVal.Pos()}
	}
	if !gates.Known(qir.Kind(gate)) {
		return &LoadError{Code: ErrCodeUnknownGate, Message: fmt.Sprintf("unknown gate kind %q", gate), Pos: gateVal.Pos()}
	}

	withVal := entry.LookupPath(cue.ParsePath("with"))
	if !withVal.Exists() {
		return &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("commute entry for %q missing with", gate), Pos: entry.Pos()}
	}
	seqIter, err := withVal.List()
	if err != nil {
		return &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("with: %v", err), Pos: withVal.Pos()}
	}
	for seqIter.Next() {
		seq, err := decodeSequence(seqIter.Value())
		if err != nil {
			return err
		}
		if err := reg.Register(qir.Kind(gate), seq); err != nil {
			return &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("registering sequence for %q: %v", gate, err), Pos: seqIter.Value().Pos()}
		}
	}
	return nil
}

func decodeSequence(list cue.Value) ([]qir.Kind, error) {
	iter, err := list.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("sequence: %v", err), Pos: list.Pos()}
	}
	var seq []qir.Kind
	for iter.Next() {
		kind, err := iter.Value().String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidCommute, Message: fmt.Sprintf("sequence element: %v", err), Pos: iter.Value().Pos()}
		}
		if !gates.Known(qir.Kind(kind)) {
			return nil, &LoadError{Code: ErrCodeUnknownGate, Message: fmt.Sprintf("unknown gate kind %q in sequence", kind), Pos: iter.Value().Pos()}
		}
		seq = append(seq, qir.Kind(kind))
	}
	return seq, nil
}
