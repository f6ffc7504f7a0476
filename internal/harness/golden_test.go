package harness

import (
	"testing"
)

func TestScenarios_Golden(t *testing.T) {
	names := []string{
		"cancel_pair",
		"merge_rotations",
		"commute_cancel",
		"blocked_cancellation",
		"ruleset_commute",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			RunWithGolden(t, loadTestScenario(t, name))
		})
	}
}
