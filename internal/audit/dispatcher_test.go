package audit

import (
	"context"
	"testing"
)

func TestDispatcherWritesEvents(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(New(store), nil)

	entity := "bk-1"
	d.Dispatch(Event{CoachID: "coach-1", Action: "booking_created", Entity: "booking", EntityID: &entity, Metadata: map[string]string{"type": "intro"}})
	d.Dispatch(Event{CoachID: "coach-1", Action: "booking_cancelled", Entity: "booking", EntityID: &entity})
	d.Dispatch(Event{CoachID: "coach-2", Action: "booking_created", Entity: "booking"})
	d.Close()

	logs, total, err := store.List(context.Background(), Filter{CoachID: "coach-1", Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("total = %d, logs = %d", total, len(logs))
	}
	if logs[0].Action != "booking_cancelled" {
		t.Errorf("newest first expected, got %s", logs[0].Action)
	}
	if logs[1].Metadata != `{"type":"intro"}` {
		t.Errorf("metadata = %q", logs[1].Metadata)
	}

	created, _, _ := store.List(context.Background(), Filter{CoachID: "coach-1", Action: "booking_created"})
	if len(created) != 1 {
		t.Errorf("action filter returned %d logs", len(created))
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "ignored"})
}
