// Package optimizer implements the qpeep local instruction-stream
// optimizer: a streaming peephole pass between a producer of primitive gate
// instructions and a downstream consumer.
//
// ARCHITECTURE:
//
// Single-Writer Pipeline Stage:
// The engine is driven entirely by inbound instruction delivery. Every
// operation (ingest, optimize, drain) runs to completion before the next
// inbound instruction is accepted. There are no background tasks, timers,
// or suspension points, so the resource buffer table needs no locking
// beyond single-threaded call ordering.
//
// Instruction Processing Flow:
//  1. An inbound instruction is appended to the queue of every resource it
//     touches (one shared *Instruction, never copies).
//  2. The flush scheduler checks thresholds per resource: window full, or
//     last instruction fast-forwarding.
//  3. Queues at threshold are peephole-optimized: identities removed,
//     inverse pairs cancelled, mergeable pairs fused, subject to the
//     commutation gate on every shared resource.
//  4. Optimized prefixes are drained downstream through the cross-resource
//     synchronizer; each instruction is forwarded exactly once, as a
//     singleton batch, via the resource whose drain reached it first.
//
// INVARIANTS:
//   - Cross-list consistency: an instruction touching resources {r1..rk}
//     occupies a position in each of the k queues; the relative order of
//     any two instructions sharing a resource equals their arrival order
//     and is never altered.
//   - An instruction is forwarded at most once and never left dangling in
//     a queue after being forwarded via another queue.
//   - After the terminal marker drains, every queue is empty. Violation is
//     a programming error and panics.
//   - Map iteration is always over sorted resource keys. No randomness, no
//     concurrency, no non-determinism.
//
// Structural edits restart the peephole scan from position 0 rather than
// re-indexing incrementally. This trades efficiency for correctness
// simplicity and must be preserved.
package optimizer
