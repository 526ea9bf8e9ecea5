package events

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventAppointmentCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := AppointmentEventPayload{Reference: "ref-1", Status: "pending"}
	if err := bus.PublishJSON(EventAppointmentCreated, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventAppointmentCreated {
		t.Errorf("expected type %s, got %s", EventAppointmentCreated, received.Type)
	}

	var decoded AppointmentEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.Reference != "ref-1" {
		t.Errorf("expected reference ref-1, got %s", decoded.Reference)
	}
}

func TestEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	var secondCalled bool
	bus.Subscribe("x", func(*Event) error { return errors.New("boom") })
	bus.Subscribe("x", func(*Event) error { secondCalled = true; return nil })

	if err := bus.PublishJSON("x", map[string]string{}); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}
	if !secondCalled {
		t.Error("second handler was not called")
	}
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON("x", map[string]string{}); err != nil {
		t.Fatalf("nil bus publish should be a no-op, got %v", err)
	}
}
