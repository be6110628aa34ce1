// Package ml is the client for the external AI service: schedule
// generation, task attribute prediction, and model retraining.
//
// The service is optional for everything except schedule generation.
// Prediction falls back to fixed defaults when the service is down, and
// retraining is fire-and-forget, so a degraded AI service never blocks
// the primary workflow.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/randalmurphal/timebuddy/internal/db"
	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
)

const (
	// DefaultPriority and DefaultDurationMinutes are returned when the
	// prediction service fails. These exact values are part of the API
	// contract with the frontend.
	DefaultPriority        = "medium"
	DefaultDurationMinutes = 30
)

// TaskSpec is one task submitted for scheduling.
type TaskSpec struct {
	TaskID            int    `json:"task_id"`
	Name              string `json:"name"`
	Priority          string `json:"priority"`
	InitialisingTime  string `json:"initialising_time"`
	DeadlineTime      string `json:"deadline_time"`
	TimeNeededMinutes int    `json:"time_needed_minutes"`
	Fixed             bool   `json:"fixed"`
	InOneGo           bool   `json:"in_one_go"`
}

// ScheduleRequest is the payload forwarded to the scheduling service.
type ScheduleRequest struct {
	Tasks    []TaskSpec `json:"tasks"`
	DayStart string     `json:"day_start"`
	DayEnd   string     `json:"day_end"`
}

// Prediction is a priority/duration estimate for a task name.
type Prediction struct {
	PredictedPriority string `json:"predicted_priority"`
	PredictedDuration int    `json:"predicted_duration"`
}

// DefaultPrediction is the estimate used when the service is unavailable.
func DefaultPrediction() Prediction {
	return Prediction{
		PredictedPriority: DefaultPriority,
		PredictedDuration: DefaultDurationMinutes,
	}
}

// Client talks to the AI service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the AI service at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CreateSchedule forwards a task list and day window to the scheduling
// service and returns the proposed timeline. Failures surface as
// OracleUnavailable; nothing is persisted here.
func (c *Client) CreateSchedule(ctx context.Context, req *ScheduleRequest) (*db.Schedule, error) {
	body, err := c.postJSON(ctx, "/create-schedule", req)
	if err != nil {
		return nil, tberrors.ErrOracleUnavailable(err)
	}

	var sched db.Schedule
	if err := json.Unmarshal(body, &sched); err != nil {
		return nil, tberrors.ErrOracleUnavailable(fmt.Errorf("decode schedule response: %w", err))
	}
	return &sched, nil
}

// Predict returns a priority/duration estimate for a task name. Any
// failure (unreachable service, error status, malformed response) is
// absorbed: the caller always gets a usable prediction.
func (c *Client) Predict(ctx context.Context, taskName string) Prediction {
	body, err := c.postJSON(ctx, "/ml/predict", map[string]string{"task_name": taskName})
	if err != nil {
		c.logger.Warn("prediction unavailable, using defaults", "task", taskName, "error", err)
		return DefaultPrediction()
	}

	// The response is parsed leniently: a missing or mistyped field
	// falls back to its default rather than failing the whole call.
	pred := DefaultPrediction()
	if v := gjson.GetBytes(body, "predicted_priority"); v.Type == gjson.String && v.Str != "" {
		pred.PredictedPriority = v.Str
	}
	if v := gjson.GetBytes(body, "predicted_duration"); v.Type == gjson.Number && v.Int() > 0 {
		pred.PredictedDuration = int(v.Int())
	}
	return pred
}

// retrainItem matches the wire format the retraining endpoint expects:
// record ids are internal and never sent.
type retrainItem struct {
	TaskName              string `json:"task_name"`
	Priority              string `json:"priority"`
	ActualDurationMinutes int    `json:"actual_duration_minutes"`
}

// Retrain sends the full task history to the retraining endpoint.
func (c *Client) Retrain(ctx context.Context, history []db.TaskHistoryRecord) error {
	items := make([]retrainItem, len(history))
	for i, rec := range history {
		items[i] = retrainItem{
			TaskName:              rec.TaskName,
			Priority:              rec.Priority,
			ActualDurationMinutes: rec.ActualDurationMinutes,
		}
	}

	if _, err := c.postJSON(ctx, "/ml/retrain", map[string]any{"history": items}); err != nil {
		return fmt.Errorf("retrain: %w", err)
	}
	return nil
}

// postJSON posts a JSON payload and returns the response body.
// Non-2xx statuses are errors.
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return body, nil
}
