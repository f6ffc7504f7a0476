package harness

import (
	"fmt"
	"strings"
)

// AssertionError reports one failed scenario assertion with enough context
// to debug it without re-running.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Stream   []string // full forwarded stream, as labels
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nforwarded stream:\n")
	for i, label := range e.Stream {
		fmt.Fprintf(&buf, "  [%d] %s\n", i, label)
	}
	return buf.String()
}

// assertForwardedOrder compares the full forwarded stream against the
// expected labels, position by position.
func assertForwardedOrder(r *Result, a Assertion) error {
	labels := r.Labels()
	if len(labels) != len(a.Instructions) {
		return &AssertionError{
			Type:     AssertForwardedOrder,
			Expected: fmt.Sprintf("%d instruction(s): %v", len(a.Instructions), a.Instructions),
			Actual:   fmt.Sprintf("%d instruction(s)", len(labels)),
			Stream:   labels,
		}
	}
	for i, want := range a.Instructions {
		if labels[i] != want {
			return &AssertionError{
				Type:     AssertForwardedOrder,
				Expected: fmt.Sprintf("%q at position %d", want, i),
				Actual:   fmt.Sprintf("%q", labels[i]),
				Stream:   labels,
			}
		}
	}
	return nil
}

func assertForwardedCount(r *Result, a Assertion) error {
	if len(r.Forwarded) != a.Count {
		return &AssertionError{
			Type:     AssertForwardedCount,
			Expected: fmt.Sprintf("%d forwarded instruction(s)", a.Count),
			Actual:   fmt.Sprintf("%d", len(r.Forwarded)),
			Stream:   r.Labels(),
		}
	}
	return nil
}

func assertForwardedContains(r *Result, a Assertion) error {
	for _, label := range r.Labels() {
		if label == a.Instruction {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertForwardedContains,
		Expected: fmt.Sprintf("%q in the forwarded stream", a.Instruction),
		Actual:   "not found",
		Stream:   r.Labels(),
	}
}

func assertBufferedEmpty(r *Result) error {
	if len(r.Pending) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertBufferedEmpty,
		Expected: "no buffered instructions",
		Actual:   fmt.Sprintf("%d resource(s) still buffering: %v", len(r.Pending), r.Pending),
		Stream:   r.Labels(),
	}
}
