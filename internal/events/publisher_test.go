package events

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishToDateSubscriber(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ch := p.Subscribe("2024-06-01")
	p.Publish(NewEvent(EventBlockCompleted, "2024-06-01", map[string]int{"block_id": 2}))

	ev := recv(t, ch)
	if ev.Type != EventBlockCompleted {
		t.Errorf("type = %s, want %s", ev.Type, EventBlockCompleted)
	}
	if ev.Date != "2024-06-01" {
		t.Errorf("date = %s", ev.Date)
	}
}

func TestPublishSkipsOtherDates(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ch := p.Subscribe("2024-06-02")
	p.Publish(NewEvent(EventScheduleReplaced, "2024-06-01", nil))

	select {
	case ev := <-ch:
		t.Errorf("unexpected event for other date: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGlobalSubscriberReceivesAll(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ch := p.Subscribe(AllDates)
	p.Publish(NewEvent(EventScheduleReplaced, "2024-06-01", nil))
	p.Publish(NewEvent(EventTaskLogged, "2024-06-02", nil))

	first := recv(t, ch)
	second := recv(t, ch)
	if first.Type != EventScheduleReplaced || second.Type != EventTaskLogged {
		t.Errorf("got %s then %s", first.Type, second.Type)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ch := p.Subscribe("2024-06-01")
	p.Unsubscribe("2024-06-01", ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	p := NewMemoryPublisher()
	ch := p.Subscribe("2024-06-01")
	p.Close()

	// Must not panic.
	p.Publish(NewEvent(EventBlockCompleted, "2024-06-01", nil))

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after publisher Close")
	}
}

func TestFullBufferDoesNotBlock(t *testing.T) {
	p := NewMemoryPublisher(WithBufferSize(1))
	defer p.Close()

	p.Subscribe("2024-06-01")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			p.Publish(NewEvent(EventBlockCompleted, "2024-06-01", i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}
