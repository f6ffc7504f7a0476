package cli

import (
	"errors"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/program"
	"github.com/qpeep/qpeep/internal/ruleset"
)

// loadRuleset resolves the effective ruleset: the file at path when given,
// the defaults otherwise.
func loadRuleset(path string) (*ruleset.Ruleset, error) {
	if path == "" {
		return ruleset.Default(), nil
	}
	return ruleset.Load(path)
}

// loadProgram loads a program file and validates it against the gate set.
func loadProgram(path string, set *gates.Set) (*program.Program, error) {
	prog, err := program.Load(path)
	if err != nil {
		return nil, err
	}
	if err := prog.Validate(set); err != nil {
		return nil, err
	}
	return prog, nil
}

// classifyProgramError maps a program loading error onto an error code and
// exit code.
func classifyProgramError(err error) (code string, exit int) {
	if program.IsValidationError(err) {
		return ErrCodeBadProgram, ExitFailure
	}
	return ErrCodeNotFound, ExitCommandError
}

// classifyRulesetError maps a ruleset loading error onto an error code.
func classifyRulesetError(err error) string {
	var le *ruleset.LoadError
	if errors.As(err, &le) && le.Code == ruleset.ErrCodeNotFound {
		return ErrCodeNotFound
	}
	return ErrCodeBadRuleset
}
