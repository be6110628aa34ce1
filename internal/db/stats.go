package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ProductivityStat is the per-date counter pair derived from the stored
// schedule: how many non-break blocks were scheduled at intake, and how
// many have since been completed.
type ProductivityStat struct {
	Date                 string `json:"date"`
	TotalBlocksScheduled int    `json:"total_blocks_scheduled"`
	BlocksCompleted      int    `json:"blocks_completed"`
}

// GetStat returns the stat row for a date, or nil if none exists.
func (s *Store) GetStat(ctx context.Context, date string) (*ProductivityStat, error) {
	var stat ProductivityStat
	err := s.QueryRow(ctx, `
		SELECT date, total_blocks_scheduled, blocks_completed
		FROM productivity_stats WHERE date = ?
	`, date).Scan(&stat.Date, &stat.TotalBlocksScheduled, &stat.BlocksCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stat %s: %w", date, err)
	}
	return &stat, nil
}

// ResetStatTx creates or resets the stat row for a date inside a
// transaction: total is set to the intake-time non-break block count
// and the completed counter starts over at zero, even when a prior row
// existed for the date.
func (s *Store) ResetStatTx(tx *TxOps, date string, totalBlocks int) error {
	_, err := tx.Exec(`
		INSERT INTO productivity_stats (date, total_blocks_scheduled, blocks_completed)
		VALUES (?, ?, 0)
		ON CONFLICT(date) DO UPDATE SET
			total_blocks_scheduled = excluded.total_blocks_scheduled,
			blocks_completed = 0
	`, date, totalBlocks)
	if err != nil {
		return fmt.Errorf("reset stat %s: %w", date, err)
	}
	return nil
}

// IncrementCompletedTx bumps the completed counter for a date inside a
// transaction. Callers only invoke this on a false-to-true block
// transition.
func (s *Store) IncrementCompletedTx(tx *TxOps, date string) error {
	res, err := tx.Exec(`
		UPDATE productivity_stats
		SET blocks_completed = blocks_completed + 1
		WHERE date = ?
	`, date)
	if err != nil {
		return fmt.Errorf("increment completed %s: %w", date, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment completed %s: %w", date, err)
	}
	if rows == 0 {
		return fmt.Errorf("increment completed %s: no stat row", date)
	}
	return nil
}

// MonthlyStats returns every stat row whose date falls within the given
// month, ordered by date ascending. A missing date means no schedule
// existed that day.
func (s *Store) MonthlyStats(ctx context.Context, year, month int) ([]ProductivityStat, error) {
	pattern := fmt.Sprintf("%04d-%02d-%%", year, month)

	rows, err := s.Query(ctx, `
		SELECT date, total_blocks_scheduled, blocks_completed
		FROM productivity_stats
		WHERE date LIKE ?
		ORDER BY date
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("monthly stats %04d-%02d: %w", year, month, err)
	}
	defer func() { _ = rows.Close() }()

	var stats []ProductivityStat
	for rows.Next() {
		var stat ProductivityStat
		if err := rows.Scan(&stat.Date, &stat.TotalBlocksScheduled, &stat.BlocksCompleted); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}
