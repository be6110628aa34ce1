package schedule

import (
	"context"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
	"github.com/randalmurphal/timebuddy/internal/events"
)

// LogCompletedTask appends a confirmed task completion to the history
// log. The post-append record count is read in the same transaction as
// the append, so the record just written counts exactly once toward the
// retrain threshold: no double trigger, no missed trigger. When the
// count is a positive multiple of the trigger count, the full history
// is snapshotted inside the transaction and handed to the retrainer
// after commit, fire-and-forget.
func (e *Engine) LogCompletedTask(ctx context.Context, rec *db.TaskHistoryRecord) error {
	if rec.TaskName == "" {
		return tberrors.ErrInvalidRequest("task_name is required")
	}
	if rec.ActualDurationMinutes <= 0 {
		return tberrors.ErrInvalidRequest("actual_duration_minutes must be positive")
	}

	var snapshot []db.TaskHistoryRecord

	err := e.store.RunInTx(ctx, func(tx *db.TxOps) error {
		if err := e.store.AppendHistoryTx(tx, rec); err != nil {
			return err
		}

		count, err := e.store.HistoryCountTx(tx)
		if err != nil {
			return err
		}

		if count > 0 && count%e.triggerCount == 0 {
			snapshot, err = e.store.ListHistoryTx(tx)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return tberrors.ErrStorage("log completed task", err)
	}

	e.publisher.Publish(events.NewEvent(events.EventTaskLogged, "", map[string]any{
		"task_name": rec.TaskName,
	}))

	if snapshot != nil {
		e.fireRetrain(snapshot)
	}
	return nil
}
