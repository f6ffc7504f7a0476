package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run id has no row in the store.
var ErrRunNotFound = errors.New("run not found")

// Run describes one recorded optimizer run.
type Run struct {
	ID        string
	Name      string
	Window    int
	CreatedAt string
	Events    int
}

// Event is one forwarded instruction of a recorded run.
type Event struct {
	RunID     string
	Seq       int
	Gate      string
	Params    string
	Resources string
	Terminal  bool
}

// ListRuns returns all recorded runs, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.window, r.created_at, COUNT(f.seq)
		FROM runs r
		LEFT JOIN forwarded f ON f.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Name, &r.Window, &r.CreatedAt, &r.Events); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run's metadata.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.name, r.window, r.created_at, COUNT(f.seq)
		FROM runs r
		LEFT JOIN forwarded f ON f.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id`, runID).Scan(&r.ID, &r.Name, &r.Window, &r.CreatedAt, &r.Events)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ReadRun returns a run's forwarded stream in emission order.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]Event, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, gate, params, resources, terminal
		FROM forwarded
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var terminal int
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Gate, &ev.Params, &ev.Resources, &terminal); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Terminal = terminal != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
