package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/randalmurphal/timebuddy/internal/db/driver"
)

// BreakItemID is the sentinel item id for break blocks. Breaks never
// count toward productivity stats.
const BreakItemID ItemID = "BREAK"

// ItemID identifies what a block schedules: a numeric task id or the
// "BREAK" sentinel. The scheduling service emits task ids as JSON
// numbers and breaks as the string "BREAK"; this type preserves that
// mixed wire format.
type ItemID string

// IsBreak reports whether the id is the break sentinel.
func (id ItemID) IsBreak() bool {
	return id == BreakItemID
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item_id must be a number or string: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers and everything else
// (the break sentinel) as a string, matching the scheduling service's
// output format.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Block is one scheduled unit of time in a day's timeline.
// IDs are a dense zero-based enumeration assigned at intake and stable
// thereafter; only Completed mutates once the block is stored.
type Block struct {
	ID        int    `json:"id"`
	ItemID    ItemID `json:"item_id"`
	ItemName  string `json:"item_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	Completed bool   `json:"completed"`
}

// Schedule is the stored daily schedule document. FinalScore and
// TaskSummary come from the scheduling service and are carried through
// untouched.
type Schedule struct {
	FinalScore  float64         `json:"final_score,omitempty"`
	Timeline    []Block         `json:"timeline"`
	TaskSummary json.RawMessage `json:"task_summary,omitempty"`
}

// GetSchedule returns the stored schedule for a date, or nil if none
// exists. Absence of a schedule is not an error.
func (s *Store) GetSchedule(ctx context.Context, date string) (*Schedule, error) {
	var data string
	err := s.QueryRow(ctx, `SELECT schedule_data FROM daily_schedules WHERE date = ?`, date).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", date, err)
	}
	return decodeSchedule(date, data)
}

// GetScheduleTx reads the schedule inside a transaction. With lock set,
// PostgreSQL takes a row lock so concurrent read-modify-write cycles on
// the same date serialize; SQLite already serializes writers.
func (s *Store) GetScheduleTx(tx *TxOps, date string, lock bool) (*Schedule, error) {
	q := `SELECT schedule_data FROM daily_schedules WHERE date = ?`
	if lock && tx.Dialect() == driver.DialectPostgres {
		q += " FOR UPDATE"
	}

	var data string
	err := tx.QueryRow(q, date).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", date, err)
	}
	return decodeSchedule(date, data)
}

// SaveScheduleTx writes (or fully replaces) the schedule document for a
// date inside a transaction.
func (s *Store) SaveScheduleTx(tx *TxOps, date string, sched *Schedule) error {
	data, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("marshal schedule %s: %w", date, err)
	}

	_, err = tx.Exec(`
		INSERT INTO daily_schedules (date, schedule_data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			schedule_data = excluded.schedule_data,
			updated_at = excluded.updated_at
	`, date, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save schedule %s: %w", date, err)
	}
	return nil
}

func decodeSchedule(date, data string) (*Schedule, error) {
	var sched Schedule
	if err := json.Unmarshal([]byte(data), &sched); err != nil {
		return nil, fmt.Errorf("decode schedule %s: %w", date, err)
	}
	return &sched, nil
}
