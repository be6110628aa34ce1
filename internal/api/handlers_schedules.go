package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
	"github.com/randalmurphal/timebuddy/internal/ml"
)

// handleGetTodaySchedule returns today's stored schedule, or null when
// no schedule has been generated yet.
func (s *Server) handleGetTodaySchedule(w http.ResponseWriter, r *http.Request) {
	date := s.today()

	sched, err := s.engine.ScheduleFor(r.Context(), date)
	if err != nil {
		s.logger.Error("failed to load schedule", "date", date, "error", err)
		HandleError(w, err)
		return
	}

	JSONResponse(w, map[string]any{
		"date":     date,
		"schedule": sched,
	})
}

// createScheduleRequest is the schedule-generation payload from the UI.
type createScheduleRequest struct {
	Tasks    []ml.TaskSpec `json:"tasks"`
	DayStart string        `json:"day_start"`
	DayEnd   string        `json:"day_end"`
}

// handleCreateSchedule forwards the task list to the scheduling
// service and stores the resulting timeline as today's schedule.
func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		HandleError(w, tberrors.ErrInvalidRequest("malformed request body: "+err.Error()))
		return
	}
	if len(req.Tasks) == 0 {
		HandleError(w, tberrors.ErrInvalidRequest("at least one task is required"))
		return
	}

	proposed, err := s.oracle.CreateSchedule(r.Context(), &ml.ScheduleRequest{
		Tasks:    req.Tasks,
		DayStart: req.DayStart,
		DayEnd:   req.DayEnd,
	})
	if err != nil {
		s.logger.Error("schedule generation failed", "error", err)
		HandleError(w, err)
		return
	}

	date := s.today()
	stamped, err := s.engine.Intake(r.Context(), date, proposed)
	if err != nil {
		s.logger.Error("schedule intake failed", "date", date, "error", err)
		HandleError(w, err)
		return
	}

	s.logger.Info("schedule stored", "date", date, "blocks", len(stamped.Timeline))
	JSONResponseStatus(w, map[string]any{
		"date":     date,
		"schedule": stamped,
	}, http.StatusCreated)
}

// completeBlockRequest is the completion-toggle payload.
type completeBlockRequest struct {
	Completed bool `json:"completed"`
}

// handleCompleteBlock updates a single block's completion flag on
// today's schedule. The response carries a task_complete signal so the
// UI knows when to prompt for the actual duration.
func (s *Server) handleCompleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := strconv.Atoi(r.PathValue("blockID"))
	if err != nil {
		HandleError(w, tberrors.ErrInvalidRequest("block id must be an integer"))
		return
	}

	var req completeBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		HandleError(w, tberrors.ErrInvalidRequest("malformed request body: "+err.Error()))
		return
	}

	date := s.today()
	updated, taskComplete, err := s.engine.CompleteBlock(r.Context(), date, blockID, req.Completed)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp := map[string]any{
		"date":          date,
		"schedule":      updated,
		"task_complete": taskComplete,
	}
	if taskComplete {
		for _, block := range updated.Timeline {
			if block.ID == blockID {
				resp["task_name"] = block.ItemName
				break
			}
		}
	}
	JSONResponse(w, resp)
}
