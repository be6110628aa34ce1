package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
)

func TestPredictSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ml/predict", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Write report", req["task_name"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"predicted_priority": "high",
			"predicted_duration": 50,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	pred := c.Predict(context.Background(), "Write report")

	assert.Equal(t, "high", pred.PredictedPriority)
	assert.Equal(t, 50, pred.PredictedDuration)
}

func TestPredictFallbackOnUnreachable(t *testing.T) {
	// Point at a server that's already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, time.Second, nil)
	pred := c.Predict(context.Background(), "Write report")

	assert.Equal(t, DefaultPriority, pred.PredictedPriority)
	assert.Equal(t, DefaultDurationMinutes, pred.PredictedDuration)
}

func TestPredictFallbackOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not trained", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	pred := c.Predict(context.Background(), "Write report")

	assert.Equal(t, Prediction{PredictedPriority: "medium", PredictedDuration: 30}, pred)
}

func TestPredictFallbackOnPartialResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Priority present, duration missing: only the missing field
		// should fall back.
		_, _ = w.Write([]byte(`{"predicted_priority":"low"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	pred := c.Predict(context.Background(), "Write report")

	assert.Equal(t, "low", pred.PredictedPriority)
	assert.Equal(t, DefaultDurationMinutes, pred.PredictedDuration)
}

func TestCreateScheduleSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/create-schedule", r.URL.Path)

		var req ScheduleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tasks, 1)
		assert.Equal(t, "Write report", req.Tasks[0].Name)

		_, _ = w.Write([]byte(`{
			"final_score": 0.9,
			"timeline": [
				{"item_id": 1, "item_name": "Write report", "start_time": "2024-06-01T09:00:00", "end_time": "2024-06-01T09:25:00"},
				{"item_id": "BREAK", "item_name": "Break", "start_time": "2024-06-01T09:25:00", "end_time": "2024-06-01T09:30:00"}
			],
			"task_summary": []
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	sched, err := c.CreateSchedule(context.Background(), &ScheduleRequest{
		Tasks: []TaskSpec{{
			TaskID:            1,
			Name:              "Write report",
			Priority:          "high",
			TimeNeededMinutes: 25,
		}},
		DayStart: "2024-06-01T09:00:00",
		DayEnd:   "2024-06-01T17:00:00",
	})
	require.NoError(t, err)
	require.Len(t, sched.Timeline, 2)
	assert.Equal(t, db.ItemID("1"), sched.Timeline[0].ItemID)
	assert.True(t, sched.Timeline[1].ItemID.IsBreak())
}

func TestCreateScheduleUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "solver crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	_, err := c.CreateSchedule(context.Background(), &ScheduleRequest{})
	require.Error(t, err)

	tbErr := tberrors.AsTBError(err)
	require.NotNil(t, tbErr)
	assert.Equal(t, tberrors.CodeOracleUnavailable, tbErr.Code)
}

func TestRetrainSendsFullHistory(t *testing.T) {
	var got struct {
		History []retrainItem `json:"history"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ml/retrain", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"training_started"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	err := c.Retrain(context.Background(), []db.TaskHistoryRecord{
		{ID: 1, TaskName: "Write report", Priority: "high", ActualDurationMinutes: 50},
		{ID: 2, TaskName: "Email triage", Priority: "low", ActualDurationMinutes: 15},
	})
	require.NoError(t, err)
	require.Len(t, got.History, 2)
	assert.Equal(t, "Write report", got.History[0].TaskName)
	assert.Equal(t, 15, got.History[1].ActualDurationMinutes)
}

func TestRetrainErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad history", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	err := c.Retrain(context.Background(), nil)
	assert.Error(t, err)
}
