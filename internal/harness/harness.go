// Package harness runs conformance scenarios against the optimizer: a YAML
// scenario describes a program, the program is pushed through a fresh engine
// with a recording consumer, and assertions (or a golden trace snapshot)
// validate the forwarded stream.
package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/optimizer"
	"github.com/qpeep/qpeep/internal/program"
	"github.com/qpeep/qpeep/internal/qir"
	"github.com/qpeep/qpeep/internal/ruleset"
	"github.com/qpeep/qpeep/internal/testutil"
)

// Result holds the outcome of a scenario run.
type Result struct {
	// ScenarioName is the scenario this result belongs to.
	ScenarioName string

	// Window is the window size the run used.
	Window int

	// Forwarded is the full forwarded stream, in emission order. The
	// terminal marker is included when the program flushes.
	Forwarded []*qir.Instruction

	// Pending is the residual per-resource buffer occupancy after the
	// program ran.
	Pending map[qir.Resource]int
}

// Labels returns the String rendering of each forwarded instruction.
func (r *Result) Labels() []string {
	out := make([]string, len(r.Forwarded))
	for i, inst := range r.Forwarded {
		out[i] = inst.String()
	}
	return out
}

// Run executes a scenario: ruleset (if any) is loaded, the program is built
// against the ruleset's gate set, and every instruction is pushed through a
// fresh engine with a recording consumer. Engine logs are discarded.
//
// Run reports execution errors only; assertion evaluation is separate (see
// Result.Check).
func Run(scenario *Scenario) (*Result, error) {
	rs := ruleset.Default()
	if scenario.Rules != "" {
		loaded, err := ruleset.Load(scenario.Rules)
		if err != nil {
			return nil, fmt.Errorf("loading ruleset: %w", err)
		}
		rs = loaded
	}

	window := rs.Window
	if scenario.Window > 0 {
		window = scenario.Window
	}

	set := gates.NewSet(rs.Registry)
	prog := &program.Program{Name: scenario.Name, Ops: scenario.Program}
	insts, err := prog.Build(set)
	if err != nil {
		return nil, fmt.Errorf("building program: %w", err)
	}

	rec := &testutil.Recorder{}
	engine, err := optimizer.New(rec,
		optimizer.WithWindowSize(window),
		optimizer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("constructing optimizer: %w", err)
	}

	if err := engine.Receive(insts); err != nil {
		return nil, fmt.Errorf("running program: %w", err)
	}

	return &Result{
		ScenarioName: scenario.Name,
		Window:       window,
		Forwarded:    rec.Forwarded,
		Pending:      engine.Pending(),
	}, nil
}

// Check evaluates every assertion of the scenario against the result and
// returns all failures.
func (r *Result) Check(scenario *Scenario) []error {
	var failures []error
	for _, a := range scenario.Assertions {
		var err error
		switch a.Type {
		case AssertForwardedOrder:
			err = assertForwardedOrder(r, a)
		case AssertForwardedCount:
			err = assertForwardedCount(r, a)
		case AssertForwardedContains:
			err = assertForwardedContains(r, a)
		case AssertBufferedEmpty:
			err = assertBufferedEmpty(r)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}
