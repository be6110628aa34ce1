// Package schedule implements the daily schedule state and
// productivity tracking engine.
//
// The engine owns the authoritative timeline for each date and keeps
// the derived productivity counters consistent with it: every
// multi-record mutation (intake's schedule+stat replace, the completion
// engine's block-write+increment, the history append+count) runs in a
// single storage transaction so the two views can never drift.
package schedule

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
	"github.com/randalmurphal/timebuddy/internal/events"
)

// DefaultRetrainTriggerCount is how many logged tasks accumulate
// between retraining runs.
const DefaultRetrainTriggerCount = 20

// Retrainer receives the full task history when the trigger count is
// reached. Calls are fire-and-forget: failures are logged, never
// surfaced and never rolled back.
type Retrainer interface {
	Retrain(ctx context.Context, history []db.TaskHistoryRecord) error
}

// Config configures an Engine.
type Config struct {
	Store               *db.Store
	Publisher           events.Publisher
	Retrainer           Retrainer
	Logger              *slog.Logger
	RetrainTriggerCount int
}

// Engine is the schedule state engine.
type Engine struct {
	store        *db.Store
	publisher    events.Publisher
	retrainer    Retrainer
	logger       *slog.Logger
	triggerCount int
}

// New creates an engine. Store is required; everything else has
// sensible defaults.
func New(cfg Config) *Engine {
	pub := cfg.Publisher
	if pub == nil {
		pub = events.NewNopPublisher()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	trigger := cfg.RetrainTriggerCount
	if trigger <= 0 {
		trigger = DefaultRetrainTriggerCount
	}
	return &Engine{
		store:        cfg.Store,
		publisher:    pub,
		retrainer:    cfg.Retrainer,
		logger:       logger,
		triggerCount: trigger,
	}
}

// ScheduleFor returns the stored schedule for a date, or nil if none
// exists.
func (e *Engine) ScheduleFor(ctx context.Context, date string) (*db.Schedule, error) {
	sched, err := e.store.GetSchedule(ctx, date)
	if err != nil {
		return nil, tberrors.ErrStorage("fetch schedule", err)
	}
	return sched, nil
}

// Stats returns the stored stat row for a date, or nil if none exists.
func (e *Engine) Stats(ctx context.Context, date string) (*db.ProductivityStat, error) {
	stat, err := e.store.GetStat(ctx, date)
	if err != nil {
		return nil, tberrors.ErrStorage("fetch stats", err)
	}
	return stat, nil
}

// MonthlyStats returns the stat rows for a month, ordered by date
// ascending. Dates with no row had no schedule.
func (e *Engine) MonthlyStats(ctx context.Context, year, month int) ([]db.ProductivityStat, error) {
	stats, err := e.store.MonthlyStats(ctx, year, month)
	if err != nil {
		return nil, tberrors.ErrStorage("fetch monthly stats", err)
	}
	return stats, nil
}

// History returns the full task history log, oldest first.
func (e *Engine) History(ctx context.Context) ([]db.TaskHistoryRecord, error) {
	records, err := e.store.ListHistory(ctx)
	if err != nil {
		return nil, tberrors.ErrStorage("fetch history", err)
	}
	return records, nil
}

// Retrain pushes the current history to the retrainer synchronously.
// Used by the CLI; the automatic trigger path is in LogCompletedTask.
func (e *Engine) Retrain(ctx context.Context) (int, error) {
	if e.retrainer == nil {
		return 0, tberrors.ErrInvalidRequest("no retrainer configured")
	}
	history, err := e.History(ctx)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 0, nil
	}
	if err := e.retrainer.Retrain(ctx, history); err != nil {
		return 0, tberrors.ErrOracleUnavailable(err)
	}
	return len(history), nil
}

// fireRetrain invokes the retrainer with a history snapshot in the
// background. The snapshot was taken inside the append transaction, so
// it reflects exactly the state that crossed the threshold.
func (e *Engine) fireRetrain(snapshot []db.TaskHistoryRecord) {
	if e.retrainer == nil {
		return
	}

	jobID := uuid.NewString()
	e.logger.Info("history threshold reached, triggering model retraining",
		"job_id", jobID, "records", len(snapshot))

	go func() {
		// Deliberately detached from the request context: the append
		// already committed and must not be affected by this call.
		if err := e.retrainer.Retrain(context.Background(), snapshot); err != nil {
			e.logger.Error("model retraining failed", "job_id", jobID, "error", err)
			return
		}
		e.logger.Info("model retraining request completed", "job_id", jobID)
	}()
}
