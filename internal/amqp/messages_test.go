package amqp

import (
	"testing"
	"time"
)

func TestDataChangedMessageRoundTrip(t *testing.T) {
	msg := NewDataChangedMessage(CollectionSales, OpCreate, "abc-123", "2024-03-01")
	if msg.OccurredAt.IsZero() {
		t.Fatal("OccurredAt not set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := DataChangedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if got.Collection != CollectionSales || got.Op != OpCreate || got.ID != "abc-123" || got.Date != "2024-03-01" {
		t.Errorf("round trip = %+v", got)
	}
	if !got.OccurredAt.Truncate(time.Millisecond).Equal(msg.OccurredAt.Truncate(time.Millisecond)) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt, msg.OccurredAt)
	}
}

func TestDataChangedMessageFromJSONInvalid(t *testing.T) {
	if _, err := DataChangedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("FromJSON() accepted malformed input")
	}
}
