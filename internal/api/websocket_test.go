package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/randalmurphal/timebuddy/internal/events"
)

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return ws
}

func readWSMessage(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

func TestWSHandler_Connect(t *testing.T) {
	pub := events.NewMemoryPublisher()
	defer pub.Close()
	handler := NewWSHandler(pub, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ws := dialWS(t, ts)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Errorf("failed to send message: %v", err)
	}
	msg := readWSMessage(t, ws)
	if msg["type"] != "pong" {
		t.Errorf("expected pong, got %v", msg["type"])
	}

	if handler.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", handler.ConnectionCount())
	}
}

func TestWSHandler_SubscribeReceivesEvents(t *testing.T) {
	pub := events.NewMemoryPublisher()
	defer pub.Close()
	handler := NewWSHandler(pub, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ws := dialWS(t, ts)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{Type: "subscribe", Date: "2024-06-15"}); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	ack := readWSMessage(t, ws)
	if ack["type"] != "subscribed" || ack["date"] != "2024-06-15" {
		t.Fatalf("unexpected ack: %v", ack)
	}

	pub.Publish(events.NewEvent(events.EventBlockCompleted, "2024-06-15", map[string]any{"block_id": 0}))

	msg := readWSMessage(t, ws)
	if msg["type"] != "event" {
		t.Fatalf("expected event message, got %v", msg)
	}
	if msg["event"] != string(events.EventBlockCompleted) {
		t.Errorf("expected %s, got %v", events.EventBlockCompleted, msg["event"])
	}
	if msg["date"] != "2024-06-15" {
		t.Errorf("expected date 2024-06-15, got %v", msg["date"])
	}
}

func TestWSHandler_SubscribeOtherDateFiltered(t *testing.T) {
	pub := events.NewMemoryPublisher()
	defer pub.Close()
	handler := NewWSHandler(pub, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ws := dialWS(t, ts)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{Type: "subscribe", Date: "2024-06-15"}); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	readWSMessage(t, ws) // ack

	pub.Publish(events.NewEvent(events.EventBlockCompleted, "2024-06-16", nil))

	_ = ws.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var msg json.RawMessage
	if err := ws.ReadJSON(&msg); err == nil {
		t.Fatalf("expected no message for another date, got %s", msg)
	}
}

func TestWSHandler_SubscribeAllDates(t *testing.T) {
	pub := events.NewMemoryPublisher()
	defer pub.Close()
	handler := NewWSHandler(pub, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ws := dialWS(t, ts)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{Type: "subscribe", Date: events.AllDates}); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	readWSMessage(t, ws) // ack

	pub.Publish(events.NewEvent(events.EventScheduleReplaced, "2024-06-16", nil))

	msg := readWSMessage(t, ws)
	if msg["event"] != string(events.EventScheduleReplaced) {
		t.Errorf("expected %s, got %v", events.EventScheduleReplaced, msg["event"])
	}
}

func TestWSHandler_SubscribeRequiresDate(t *testing.T) {
	pub := events.NewMemoryPublisher()
	defer pub.Close()
	handler := NewWSHandler(pub, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ws := dialWS(t, ts)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{Type: "subscribe"}); err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	msg := readWSMessage(t, ws)
	if msg["type"] != "error" {
		t.Errorf("expected error, got %v", msg)
	}
}
