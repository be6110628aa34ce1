// Package events provides in-memory pub/sub for schedule updates.
// The API server's websocket feed subscribes here so browser clients
// can refresh without polling.
package events

import "time"

// EventType identifies what changed.
type EventType string

const (
	// EventScheduleReplaced fires when intake stores a new schedule for a date.
	EventScheduleReplaced EventType = "schedule.replaced"
	// EventBlockCompleted fires when a block's completion flag changes.
	EventBlockCompleted EventType = "block.completed"
	// EventTaskLogged fires when a completed task is appended to the history log.
	EventTaskLogged EventType = "task.logged"
)

// Event is a single schedule-state change notification.
type Event struct {
	Type      EventType `json:"type"`
	Date      string    `json:"date,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, date string, data any) Event {
	return Event{
		Type:      eventType,
		Date:      date,
		Data:      data,
		Timestamp: time.Now(),
	}
}
