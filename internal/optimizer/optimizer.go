package optimizer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/qpeep/qpeep/internal/qir"
)

// DefaultWindowSize is the default number of instructions buffered per
// resource before a mandatory partial drain.
const DefaultWindowSize = 5

// Consumer receives forwarded instruction batches. Receive is a blocking
// call that must complete (or fail) before the optimizer proceeds; the
// optimizer forwards one instruction per batch.
type Consumer interface {
	Receive(batch []*qir.Instruction) error
}

// Engine is the single-writer streaming optimizer.
//
// The engine buffers a bounded window of pending instructions per resource,
// cancels or fuses instructions using the gate payload's algebra, and
// forwards instructions downstream once no further local optimization is
// possible, strictly preserving the producer's relative ordering of
// instructions that share a resource.
//
// All mutation happens inside Receive; the engine must be driven from a
// single goroutine.
type Engine struct {
	downstream Consumer
	window     int
	logger     *slog.Logger

	// table maps each resource to its ordered queue of pending
	// instructions. Queues share *Instruction values: a multi-resource
	// instruction occupies one position in every touched queue.
	table map[qir.Resource][]*qir.Instruction
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWindowSize sets the window size m: the maximum number of
// instructions buffered per resource before a mandatory partial drain.
// m must be at least 1.
func WithWindowSize(m int) Option {
	return func(e *Engine) error {
		if m < 1 {
			return fmt.Errorf("window size must be positive, got %d", m)
		}
		e.window = m
		return nil
	}
}

// WithLogger sets the logger used for recoverable queue anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		e.logger = logger
		return nil
	}
}

// New creates an Engine forwarding to downstream.
func New(downstream Consumer, opts ...Option) (*Engine, error) {
	if downstream == nil {
		return nil, fmt.Errorf("downstream consumer must not be nil")
	}
	e := &Engine{
		downstream: downstream,
		window:     DefaultWindowSize,
		logger:     slog.Default(),
		table:      make(map[qir.Resource][]*qir.Instruction),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// WindowSize returns the configured window size m.
func (e *Engine) WindowSize() int {
	return e.window
}

// Pending returns the current queue length per resource. Resources with
// empty queues are omitted. Used for assertions and introspection.
func (e *Engine) Pending() map[qir.Resource]int {
	out := make(map[qir.Resource]int)
	for r, q := range e.table {
		if len(q) > 0 {
			out[r] = len(q)
		}
	}
	return out
}

// Receive ingests a batch of instructions in program order.
//
// Regular instructions are buffered on every resource they touch and the
// flush scheduler runs. The terminal marker forces every queue to fully
// drain before the marker itself is forwarded; afterwards all per-resource
// state is empty.
//
// A non-nil error means the downstream consumer failed; the terminal-drain
// invariant violation panics instead, since it indicates a synchronization
// bug in this package.
func (e *Engine) Receive(batch []*qir.Instruction) error {
	for _, inst := range batch {
		if inst.Terminal() {
			if err := e.flushAll(); err != nil {
				return err
			}
			if err := e.downstream.Receive([]*qir.Instruction{inst}); err != nil {
				return fmt.Errorf("forward terminal marker: %w", err)
			}
			continue
		}
		e.buffer(inst)
		if err := e.checkAndFlush(); err != nil {
			return err
		}
	}
	return nil
}

// buffer appends the instruction to the queue of every resource it touches.
func (e *Engine) buffer(inst *qir.Instruction) {
	for _, r := range inst.Resources() {
		e.table[r] = append(e.table[r], inst)
	}
}

// checkAndFlush is the flush scheduler: evaluated per resource after each
// ingested instruction. A queue at the window threshold is optimized, then
// drained from the front until exactly window-1 instructions remain; a
// queue whose last instruction fast-forwards is optimized and drained
// entirely.
func (e *Engine) checkAndFlush() error {
	for _, r := range e.sortedResources() {
		q := e.table[r]
		if len(q) < e.window && !lastFastForwards(q) {
			continue
		}
		e.optimize(r, len(q))

		// Re-check: optimization may have brought the queue back under
		// the threshold.
		q = e.table[r]
		switch {
		case len(q) >= e.window && !lastFastForwards(q):
			if err := e.drain(r, len(q)-e.window+1); err != nil {
				return err
			}
		case lastFastForwards(q):
			if err := e.drain(r, len(q)); err != nil {
				return err
			}
		}
	}
	e.pruneEmpty()
	return nil
}

// flushAll optimizes and fully drains every queue, then asserts the table
// is empty. Called only for the terminal marker.
func (e *Engine) flushAll() error {
	for _, r := range e.sortedResources() {
		q := e.table[r]
		if len(q) == 0 {
			continue
		}
		e.optimize(r, len(q))
		if err := e.drain(r, len(e.table[r])); err != nil {
			return err
		}
	}
	for r, q := range e.table {
		if len(q) > 0 {
			panic(fmt.Sprintf("optimizer: resource %d holds %d pending instruction(s) after terminal drain", r, len(q)))
		}
	}
	e.table = make(map[qir.Resource][]*qir.Instruction)
	return nil
}

// drainFrame is one entry of the explicit drain worklist: forward the
// first n instructions of res's queue.
type drainFrame struct {
	res qir.Resource
	n   int
}

// drain forwards the first n instructions of res's queue, in order,
// downstream. For each emitted instruction that also touches other
// resources, those resources are first optimized and drained up to (but
// not including) the instruction's own position in their queues, so an
// instruction is never emitted while a causally-prior instruction on a
// shared resource is still pending. The instruction is then removed from
// every queue it occupies and forwarded exactly once, via the resource
// whose drain reached it.
//
// The cross-resource recursion is expressed as an explicit worklist to
// bound stack depth deterministically.
func (e *Engine) drain(res qir.Resource, n int) error {
	stack := []drainFrame{{res: res, n: n}}
	for len(stack) > 0 {
		top := len(stack) - 1
		frame := stack[top]
		q := e.table[frame.res]
		if frame.n <= 0 || len(q) == 0 {
			stack = stack[:top]
			continue
		}
		inst := q[0]

		// Bring every other touched resource's queue up to inst before
		// emitting it.
		blocked := false
		for _, other := range inst.Resources() {
			if other == frame.res {
				continue
			}
			pos, ok := positionOf(e.table[other], inst)
			if !ok {
				e.logger.Warn("inconsistent queue during drain; skipping resource",
					"resource", int(other), "instruction", inst.String())
				continue
			}
			if pos == 0 {
				continue
			}
			if pos = e.optimize(other, pos); pos > 0 {
				stack = append(stack, drainFrame{res: other, n: pos})
				blocked = true
			}
		}
		if blocked {
			continue
		}

		// inst heads every queue it occupies. Remove it everywhere else
		// without re-emitting, then emit via this resource.
		for _, other := range inst.Resources() {
			if other == frame.res {
				continue
			}
			pos, ok := positionOf(e.table[other], inst)
			if !ok {
				e.logger.Warn("inconsistent queue during drain; skipping resource",
					"resource", int(other), "instruction", inst.String())
				continue
			}
			oq := e.table[other]
			e.table[other] = append(oq[:pos:pos], oq[pos+1:]...)
		}
		e.table[frame.res] = e.table[frame.res][1:]
		stack[top].n--

		if err := e.downstream.Receive([]*qir.Instruction{inst}); err != nil {
			return fmt.Errorf("forward instruction %s: %w", inst, err)
		}
	}
	return nil
}

// pruneEmpty removes resources whose queues drained to empty.
func (e *Engine) pruneEmpty() {
	for r, q := range e.table {
		if len(q) == 0 {
			delete(e.table, r)
		}
	}
}

// sortedResources returns the table's resource keys in ascending order,
// keeping scheduling deterministic.
func (e *Engine) sortedResources() []qir.Resource {
	rs := make([]qir.Resource, 0, len(e.table))
	for r := range e.table {
		rs = append(rs, r)
	}
	slices.Sort(rs)
	return rs
}

// positionOf locates inst in q by identity.
func positionOf(q []*qir.Instruction, inst *qir.Instruction) (int, bool) {
	for i, c := range q {
		if c == inst {
			return i, true
		}
	}
	return 0, false
}

func lastFastForwards(q []*qir.Instruction) bool {
	return len(q) > 0 && q[len(q)-1].Gate.FastForwards()
}
