package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/qpeep/qpeep/internal/qir"
)

// snapshot renders a result as a canonical-JSON-ready map. Golden files are
// byte-compared, so every field goes through the canonical encoder.
func snapshot(r *Result) map[string]any {
	forwarded := make([]any, len(r.Forwarded))
	for i, inst := range r.Forwarded {
		params := map[string]any{}
		if angled, ok := inst.Gate.(interface{ Angle() float64 }); ok {
			params["angle"] = angled.Angle()
		}
		groups := make([]any, len(inst.Groups))
		for gi, group := range inst.Groups {
			g := make([]any, len(group))
			for ti, res := range group {
				g[ti] = int64(res)
			}
			groups[gi] = g
		}
		forwarded[i] = map[string]any{
			"seq":       int64(i),
			"gate":      string(inst.Gate.Kind()),
			"params":    params,
			"resources": groups,
			"terminal":  inst.Terminal(),
		}
	}
	return map[string]any{
		"scenario_name": r.ScenarioName,
		"window":        int64(r.Window),
		"forwarded":     forwarded,
	}
}

// RunWithGolden executes a scenario, fails the test on any assertion
// failure, and compares the canonical trace snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("running scenario %s: %v", scenario.Name, err)
	}
	for _, failure := range result.Check(scenario) {
		t.Error(failure)
	}

	data, err := qir.MarshalCanonical(snapshot(result))
	if err != nil {
		t.Fatalf("marshaling snapshot for %s: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
