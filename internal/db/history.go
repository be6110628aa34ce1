package db

import (
	"context"
	"fmt"
)

// TaskHistoryRecord is one confirmed task completion: the task's name,
// its priority, and how long it actually took. Records are append-only;
// nothing in the engine updates or deletes them.
type TaskHistoryRecord struct {
	ID                    int64  `json:"id,omitempty"`
	TaskName              string `json:"task_name"`
	Priority              string `json:"priority"`
	ActualDurationMinutes int    `json:"actual_duration_minutes"`
}

// AppendHistoryTx inserts a history record inside a transaction and
// fills in its assigned id.
func (s *Store) AppendHistoryTx(tx *TxOps, rec *TaskHistoryRecord) error {
	err := tx.QueryRow(`
		INSERT INTO task_history (task_name, priority, actual_duration_minutes)
		VALUES (?, ?, ?)
		RETURNING id
	`, rec.TaskName, rec.Priority, rec.ActualDurationMinutes).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// HistoryCountTx returns the total number of history records inside a
// transaction. The retrain trigger reads this in the same transaction
// as the append so the threshold decision sees the new record exactly
// once.
func (s *Store) HistoryCountTx(tx *TxOps) (int, error) {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM task_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// ListHistoryTx returns every history record inside a transaction,
// oldest first.
func (s *Store) ListHistoryTx(tx *TxOps) ([]TaskHistoryRecord, error) {
	rows, err := tx.Query(`
		SELECT id, task_name, priority, actual_duration_minutes
		FROM task_history
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanHistory(rows)
}

// ListHistory returns every history record, oldest first.
func (s *Store) ListHistory(ctx context.Context) ([]TaskHistoryRecord, error) {
	rows, err := s.Query(ctx, `
		SELECT id, task_name, priority, actual_duration_minutes
		FROM task_history
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanHistory(rows)
}

func scanHistory(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]TaskHistoryRecord, error) {
	var records []TaskHistoryRecord
	for rows.Next() {
		var rec TaskHistoryRecord
		if err := rows.Scan(&rec.ID, &rec.TaskName, &rec.Priority, &rec.ActualDurationMinutes); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}
