package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/qir"
)

func fakeResult() *Result {
	set := gates.DefaultSet()
	return &Result{
		ScenarioName: "fake",
		Window:       5,
		Forwarded: []*qir.Instruction{
			qir.NewInstruction(set.X(), []qir.Resource{0}),
			qir.NewInstruction(set.CZ(), []qir.Resource{0, 1}),
			qir.NewInstruction(set.Flush()),
		},
		Pending: map[qir.Resource]int{},
	}
}

func TestAssertForwardedOrder(t *testing.T) {
	r := fakeResult()

	require.NoError(t, assertForwardedOrder(r, Assertion{
		Instructions: []string{"X [[0]]", "CZ [[0 1]]", "Flush"},
	}))

	err := assertForwardedOrder(r, Assertion{
		Instructions: []string{"CZ [[0 1]]", "X [[0]]", "Flush"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position 0")

	err = assertForwardedOrder(r, Assertion{Instructions: []string{"X [[0]]"}})
	require.Error(t, err, "length mismatch fails")
}

func TestAssertForwardedCount(t *testing.T) {
	r := fakeResult()

	require.NoError(t, assertForwardedCount(r, Assertion{Count: 3}))
	require.Error(t, assertForwardedCount(r, Assertion{Count: 2}))
}

func TestAssertForwardedContains(t *testing.T) {
	r := fakeResult()

	require.NoError(t, assertForwardedContains(r, Assertion{Instruction: "CZ [[0 1]]"}))

	err := assertForwardedContains(r, Assertion{Instruction: "H [[0]]"})
	require.Error(t, err)
}

func TestAssertBufferedEmpty(t *testing.T) {
	r := fakeResult()
	require.NoError(t, assertBufferedEmpty(r))

	r.Pending = map[qir.Resource]int{2: 1}
	require.Error(t, assertBufferedEmpty(r))
}

func TestAssertionError_IncludesStream(t *testing.T) {
	err := &AssertionError{
		Type:     AssertForwardedCount,
		Expected: "2 forwarded instruction(s)",
		Actual:   "3",
		Stream:   []string{"X [[0]]", "CZ [[0 1]]", "Flush"},
	}
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "forwarded_count"))
	assert.True(t, strings.Contains(msg, "[1] CZ [[0 1]]"))
}
