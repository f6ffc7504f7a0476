// Package program defines the YAML circuit file format: an ordered list of
// gate applications on resource groups, parsed and validated against a gate
// set before being turned into instructions.
package program

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/qir"
)

// Op is one entry of a program: either a gate application or the terminal
// flush marker.
type Op struct {
	Gate    qir.Kind `yaml:"gate,omitempty"`
	Angle   *float64 `yaml:"angle,omitempty"`
	Targets [][]int  `yaml:"targets,omitempty"`
	Flush   bool     `yaml:"flush,omitempty"`
}

// Program is a named, ordered instruction stream.
type Program struct {
	Name string `yaml:"name"`
	Ops  []Op   `yaml:"ops"`
}

// ValidationErrorCode categorizes program validation errors.
type ValidationErrorCode string

const (
	ErrCodeUnknownGate  ValidationErrorCode = "UNKNOWN_GATE"
	ErrCodeBadAngle     ValidationErrorCode = "BAD_ANGLE"
	ErrCodeBadTargets   ValidationErrorCode = "BAD_TARGETS"
	ErrCodeBadOp        ValidationErrorCode = "BAD_OP"
	ErrCodeEmptyProgram ValidationErrorCode = "EMPTY_PROGRAM"
)

// ValidationError reports a malformed program, naming the offending op.
type ValidationError struct {
	Code    ValidationErrorCode
	Op      int // index into Ops, -1 for program-level errors
	Message string
}

func (e *ValidationError) Error() string {
	if e.Op >= 0 {
		return fmt.Sprintf("%s: op %d: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Parse decodes a YAML program. Unknown fields are rejected.
func Parse(data []byte) (*Program, error) {
	var p Program
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing program: %w", err)
	}
	return &p, nil
}

// Load reads and parses a program file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return Parse(data)
}

// Validate checks every op against the gate set without building
// instructions.
func (p *Program) Validate(set *gates.Set) error {
	if len(p.Ops) == 0 {
		return &ValidationError{Code: ErrCodeEmptyProgram, Op: -1, Message: "program has no ops"}
	}
	for i, op := range p.Ops {
		if err := validateOp(set, i, op); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the program and constructs its instruction stream. A flush
// op becomes the terminal marker.
func (p *Program) Build(set *gates.Set) ([]*qir.Instruction, error) {
	if err := p.Validate(set); err != nil {
		return nil, err
	}
	out := make([]*qir.Instruction, 0, len(p.Ops))
	for _, op := range p.Ops {
		if op.Flush {
			out = append(out, qir.NewInstruction(set.Flush()))
			continue
		}
		gate, err := set.Make(op.Gate, op.Angle)
		if err != nil {
			return nil, err
		}
		groups := make([][]qir.Resource, len(op.Targets))
		for gi, group := range op.Targets {
			groups[gi] = make([]qir.Resource, len(group))
			for ti, target := range group {
				groups[gi][ti] = qir.Resource(target)
			}
		}
		out = append(out, qir.NewInstruction(gate, groups...))
	}
	return out, nil
}

func validateOp(set *gates.Set, i int, op Op) error {
	if op.Flush {
		if op.Gate != "" || op.Angle != nil || len(op.Targets) > 0 {
			return &ValidationError{Code: ErrCodeBadOp, Op: i, Message: "flush op must not carry gate fields"}
		}
		return nil
	}
	if op.Gate == "" {
		return &ValidationError{Code: ErrCodeBadOp, Op: i, Message: "op needs a gate or flush: true"}
	}
	if !gates.Known(op.Gate) {
		return &ValidationError{Code: ErrCodeUnknownGate, Op: i, Message: fmt.Sprintf("unknown gate kind %q", op.Gate)}
	}
	if gates.Rotational(op.Gate) != (op.Angle != nil) {
		if op.Angle == nil {
			return &ValidationError{Code: ErrCodeBadAngle, Op: i, Message: fmt.Sprintf("gate %q requires an angle", op.Gate)}
		}
		return &ValidationError{Code: ErrCodeBadAngle, Op: i, Message: fmt.Sprintf("gate %q takes no angle", op.Gate)}
	}
	return validateTargets(i, op)
}

func validateTargets(i int, op Op) error {
	if len(op.Targets) == 0 {
		return &ValidationError{Code: ErrCodeBadTargets, Op: i, Message: "op needs at least one target group"}
	}
	arity := gates.Arity(op.Gate)
	seen := make(map[int]bool)
	for _, group := range op.Targets {
		if len(group) == 0 {
			return &ValidationError{Code: ErrCodeBadTargets, Op: i, Message: "empty target group"}
		}
		if arity > 0 && len(group) != arity {
			return &ValidationError{Code: ErrCodeBadTargets, Op: i,
				Message: fmt.Sprintf("gate %q targets %d resource(s) per group, got %d", op.Gate, arity, len(group))}
		}
		for _, target := range group {
			if target < 0 {
				return &ValidationError{Code: ErrCodeBadTargets, Op: i, Message: fmt.Sprintf("negative resource id %d", target)}
			}
			if seen[target] {
				return &ValidationError{Code: ErrCodeBadTargets, Op: i, Message: fmt.Sprintf("duplicate resource id %d", target)}
			}
			seen[target] = true
		}
	}
	return nil
}
