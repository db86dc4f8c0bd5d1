package events

import (
	"context"
	"testing"
)

func TestNewEvent(t *testing.T) {
	data := map[string]interface{}{
		"client_id": "client-1",
		"tier_code": "berline",
	}

	event := NewEvent(BookingCreated, "booking-123", data)

	if event.ID == "" {
		t.Error("Expected event ID to be set")
	}
	if event.Type != BookingCreated {
		t.Errorf("Expected type %s, got %s", BookingCreated, event.Type)
	}
	if event.Aggregate != "booking-123" {
		t.Errorf("Expected aggregate booking-123, got %s", event.Aggregate)
	}
	if event.Timestamp == 0 {
		t.Error("Expected timestamp to be set")
	}
	if event.Version != 1 {
		t.Errorf("Expected version 1, got %d", event.Version)
	}
	if event.Data["tier_code"] != "berline" {
		t.Errorf("Expected data to carry tier_code, got %v", event.Data)
	}
}

func TestNewEventIDsAreUnique(t *testing.T) {
	a := NewEvent(BookingPaid, "booking-1", nil)
	b := NewEvent(BookingPaid, "booking-1", nil)

	if a.ID == b.ID {
		t.Errorf("Expected distinct event IDs, both were %s", a.ID)
	}
}

func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher()
	ctx := context.Background()

	event := NewEvent(BookingCancelled, "booking-456", nil)

	// Should always return nil without any side effects
	if err := publisher.Publish(ctx, event); err != nil {
		t.Errorf("Expected no error from NoopPublisher, got: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Expected no error on close, got: %v", err)
	}
}

func TestPublisherInterface(t *testing.T) {
	// Both implementations satisfy the interface
	var _ Publisher = &NoopPublisher{}
	var _ Publisher = &KafkaPublisher{}
}
