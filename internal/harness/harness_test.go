package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/program"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_AllScenariosPass(t *testing.T) {
	names := []string{
		"cancel_pair",
		"merge_rotations",
		"commute_cancel",
		"blocked_cancellation",
		"window_drain",
		"fast_forward",
		"ruleset_commute",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			scenario := loadTestScenario(t, name)
			result, err := Run(scenario)
			require.NoError(t, err)
			for _, failure := range result.Check(scenario) {
				t.Error(failure)
			}
		})
	}
}

func TestRun_WindowPrecedence(t *testing.T) {
	// The scenario window overrides the default even when a ruleset is
	// present.
	scenario := loadTestScenario(t, "ruleset_commute")
	scenario.Window = 2

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Window)
}

func TestRun_ResidualBufferReported(t *testing.T) {
	scenario := loadTestScenario(t, "window_drain")

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Pending, 1)
	assert.Equal(t, 2, result.Pending[0])
}

func TestRun_InvalidProgram(t *testing.T) {
	scenario := &Scenario{
		Name:        "broken",
		Description: "missing angle",
		Program: []program.Op{
			{Gate: "Rz", Targets: [][]int{{0}}},
			{Flush: true},
		},
		Assertions: []Assertion{{Type: AssertBufferedEmpty}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.True(t, program.IsValidationError(err))
}

func TestResult_CheckReportsFailures(t *testing.T) {
	scenario := loadTestScenario(t, "cancel_pair")
	scenario.Assertions = []Assertion{
		{Type: AssertForwardedOrder, Instructions: []string{"X [[0]]"}},
		{Type: AssertForwardedCount, Count: 9},
		{Type: AssertForwardedContains, Instruction: "H [[3]]"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	failures := result.Check(scenario)
	require.Len(t, failures, 3)
	var ae *AssertionError
	require.ErrorAs(t, failures[0], &ae)
	assert.Equal(t, AssertForwardedOrder, ae.Type)
}

func TestResult_Labels(t *testing.T) {
	scenario := loadTestScenario(t, "fast_forward")

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rz(0.5) [[0]]", "Measure [[0]]"}, result.Labels())
}
