package schedule

import (
	"context"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
	"github.com/randalmurphal/timebuddy/internal/events"
)

// CompleteBlock applies a completion transition to one block of a
// date's schedule. The block write and the conditional counter
// increment happen in a single transaction: the counter moves if and
// only if a non-break block goes false-to-true. Setting a block back
// to false, repeating true-to-true, or toggling a break leaves the
// counter alone, keeping it equal to the number of completed non-break
// blocks in the timeline.
//
// The returned bool reports whether this transition left every block of
// the same task (breaks excluded) completed — the caller's cue to ask
// the user for the actual duration and log the task.
func (e *Engine) CompleteBlock(ctx context.Context, date string, blockID int, completed bool) (*db.Schedule, bool, error) {
	var (
		updated      *db.Schedule
		taskComplete bool
	)

	err := e.store.RunInTx(ctx, func(tx *db.TxOps) error {
		sched, err := e.store.GetScheduleTx(tx, date, true)
		if err != nil {
			return tberrors.ErrStorage("load schedule", err)
		}
		if sched == nil {
			return tberrors.ErrScheduleNotFound(date)
		}

		idx := -1
		for i := range sched.Timeline {
			if sched.Timeline[i].ID == blockID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return tberrors.ErrBlockNotFound(date, blockID)
		}

		wasCompleted := sched.Timeline[idx].Completed
		sched.Timeline[idx].Completed = completed

		if err := e.store.SaveScheduleTx(tx, date, sched); err != nil {
			return tberrors.ErrStorage("save schedule", err)
		}

		if completed && !wasCompleted && !sched.Timeline[idx].ItemID.IsBreak() {
			if err := e.store.IncrementCompletedTx(tx, date); err != nil {
				return tberrors.ErrStorage("update stats", err)
			}
		}

		updated = sched
		taskComplete = isTaskComplete(sched, sched.Timeline[idx].ItemID)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	e.publisher.Publish(events.NewEvent(events.EventBlockCompleted, date, map[string]any{
		"block_id":      blockID,
		"completed":     completed,
		"task_complete": taskComplete,
	}))

	return updated, taskComplete, nil
}

// isTaskComplete reports whether every block of the given task in the
// timeline is completed. Breaks are never "complete" as a task.
func isTaskComplete(sched *db.Schedule, itemID db.ItemID) bool {
	if itemID.IsBreak() {
		return false
	}
	for _, block := range sched.Timeline {
		if block.ItemID == itemID && !block.Completed {
			return false
		}
	}
	return true
}
