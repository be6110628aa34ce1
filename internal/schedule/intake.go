package schedule

import (
	"context"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
	"github.com/randalmurphal/timebuddy/internal/events"
)

// Intake accepts a freshly generated schedule and makes it the
// authoritative state for the date: every block gets a dense zero-based
// id in timeline order and a cleared completion flag, and the stat row
// is reset to {count of non-break blocks, 0}. Schedule and stat are
// written in one transaction; any prior entry for the date is fully
// replaced, never merged.
func (e *Engine) Intake(ctx context.Context, date string, proposed *db.Schedule) (*db.Schedule, error) {
	stamped := &db.Schedule{
		FinalScore:  proposed.FinalScore,
		Timeline:    make([]db.Block, len(proposed.Timeline)),
		TaskSummary: proposed.TaskSummary,
	}

	totalBlocks := 0
	for i, block := range proposed.Timeline {
		block.ID = i
		block.Completed = false
		stamped.Timeline[i] = block
		if !block.ItemID.IsBreak() {
			totalBlocks++
		}
	}

	err := e.store.RunInTx(ctx, func(tx *db.TxOps) error {
		if err := e.store.SaveScheduleTx(tx, date, stamped); err != nil {
			return err
		}
		return e.store.ResetStatTx(tx, date, totalBlocks)
	})
	if err != nil {
		return nil, tberrors.ErrStorage("store schedule", err)
	}

	e.publisher.Publish(events.NewEvent(events.EventScheduleReplaced, date, map[string]any{
		"total_blocks": totalBlocks,
	}))

	return stamped, nil
}
