package api

import (
	"encoding/json"
	"net/http"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
)

// logTaskRequest records the actual outcome of a completed task.
type logTaskRequest struct {
	TaskName              string `json:"task_name"`
	Priority              string `json:"priority"`
	ActualDurationMinutes int    `json:"actual_duration_minutes"`
}

// handleLogTask appends a completed task to the history log. Crossing
// the retrain threshold kicks off a background retrain; the response
// never waits for it.
func (s *Server) handleLogTask(w http.ResponseWriter, r *http.Request) {
	var req logTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		HandleError(w, tberrors.ErrInvalidRequest("malformed request body: "+err.Error()))
		return
	}

	rec := &db.TaskHistoryRecord{
		TaskName:              req.TaskName,
		Priority:              req.Priority,
		ActualDurationMinutes: req.ActualDurationMinutes,
	}
	if err := s.engine.LogCompletedTask(r.Context(), rec); err != nil {
		HandleError(w, err)
		return
	}

	JSONResponseStatus(w, map[string]any{
		"id":        rec.ID,
		"task_name": rec.TaskName,
	}, http.StatusCreated)
}

// handlePredict proxies a priority/duration estimate for a task name.
// Upstream failure is absorbed: the client always gets a usable answer.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	taskName := r.URL.Query().Get("taskName")
	if taskName == "" {
		HandleError(w, tberrors.ErrInvalidRequest("taskName query parameter is required"))
		return
	}

	JSONResponse(w, s.oracle.Predict(r.Context(), taskName))
}
