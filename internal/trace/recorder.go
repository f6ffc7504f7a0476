package trace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/qpeep/qpeep/internal/qir"
)

// Recorder writes the forwarded stream of one optimizer run to the store.
// It implements the optimizer's Consumer interface and stamps a monotonic
// sequence number per forwarded instruction.
//
// Like the optimizer itself, a Recorder is single-writer.
type Recorder struct {
	store *Store
	runID string
	seq   int
}

// BeginRun registers a new run under a fresh UUIDv7 id and returns its
// recorder.
func (s *Store) BeginRun(ctx context.Context, name string, window int) (*Recorder, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, window) VALUES (?, ?, ?)`,
		id.String(), name, window,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Recorder{store: s, runID: id.String()}, nil
}

// RunID returns the run's id.
func (r *Recorder) RunID() string {
	return r.runID
}

// Receive persists each forwarded instruction under the next sequence
// number.
func (r *Recorder) Receive(batch []*qir.Instruction) error {
	for _, inst := range batch {
		params, resources, err := encodeInstruction(inst)
		if err != nil {
			return fmt.Errorf("encode instruction %s: %w", inst, err)
		}
		terminal := 0
		if inst.Terminal() {
			terminal = 1
		}
		if _, err := r.store.db.ExecContext(context.Background(),
			`INSERT INTO forwarded (run_id, seq, gate, params, resources, terminal) VALUES (?, ?, ?, ?, ?, ?)`,
			r.runID, r.seq, string(inst.Gate.Kind()), params, resources, terminal,
		); err != nil {
			return fmt.Errorf("insert forwarded instruction: %w", err)
		}
		r.seq++
	}
	return nil
}

// encodeInstruction renders an instruction's gate parameters and resource
// groups as canonical JSON.
func encodeInstruction(inst *qir.Instruction) (params, resources string, err error) {
	p := map[string]any{}
	if angled, ok := inst.Gate.(interface{ Angle() float64 }); ok {
		p["angle"] = angled.Angle()
	}
	pb, err := qir.MarshalCanonical(p)
	if err != nil {
		return "", "", err
	}

	groups := make([]any, len(inst.Groups))
	for i, group := range inst.Groups {
		g := make([]any, len(group))
		for j, res := range group {
			g[j] = int64(res)
		}
		groups[i] = g
	}
	rb, err := qir.MarshalCanonical(groups)
	if err != nil {
		return "", "", err
	}
	return string(pb), string(rb), nil
}
