// Package testutil provides deterministic test doubles for the optimizer's
// downstream side: a recording consumer and a failing consumer.
//
// The package deliberately imports only qir so it can be used from the
// optimizer package's own tests without an import cycle.
package testutil

import (
	"errors"

	"github.com/qpeep/qpeep/internal/qir"
)

// ErrConsumerFailed is the default error a FailingConsumer returns.
var ErrConsumerFailed = errors.New("downstream consumer failed")

// Recorder records every forwarded batch in arrival order.
// It implements the optimizer's Consumer interface.
type Recorder struct {
	// Batches holds each Receive call's batch as delivered.
	Batches [][]*qir.Instruction
	// Forwarded holds all instructions flattened across batches.
	Forwarded []*qir.Instruction
}

// Receive appends the batch to the record. Never fails.
func (r *Recorder) Receive(batch []*qir.Instruction) error {
	copied := make([]*qir.Instruction, len(batch))
	copy(copied, batch)
	r.Batches = append(r.Batches, copied)
	r.Forwarded = append(r.Forwarded, copied...)
	return nil
}

// Labels returns the String rendering of each forwarded instruction, in
// forwarding order.
func (r *Recorder) Labels() []string {
	out := make([]string, len(r.Forwarded))
	for i, inst := range r.Forwarded {
		out[i] = inst.String()
	}
	return out
}

// Kinds returns the gate kind of each forwarded instruction, in forwarding
// order.
func (r *Recorder) Kinds() []qir.Kind {
	out := make([]qir.Kind, len(r.Forwarded))
	for i, inst := range r.Forwarded {
		out[i] = inst.Gate.Kind()
	}
	return out
}

// Reset clears the record.
func (r *Recorder) Reset() {
	r.Batches = nil
	r.Forwarded = nil
}

// FailingConsumer accepts After batches, then fails every Receive with Err
// (ErrConsumerFailed when Err is nil). Instructions delivered before the
// failure are recorded in Forwarded.
type FailingConsumer struct {
	After     int
	Err       error
	Forwarded []*qir.Instruction

	received int
}

// Receive fails once After batches have been accepted.
func (f *FailingConsumer) Receive(batch []*qir.Instruction) error {
	if f.received >= f.After {
		if f.Err != nil {
			return f.Err
		}
		return ErrConsumerFailed
	}
	f.received++
	f.Forwarded = append(f.Forwarded, batch...)
	return nil
}
