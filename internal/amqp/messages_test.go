package amqp

import (
	"testing"
)

func TestReconcileMessageRoundTrip(t *testing.T) {
	msg := NewReconcileMessage("food", ReasonSpentUpdateFailed)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ReconcileMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.CategoryKey != "food" || got.Reason != ReasonSpentUpdateFailed {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestReconcileMessageRejectsEmptyKey(t *testing.T) {
	if _, err := ReconcileMessageFromJSON([]byte(`{"reason":"manual"}`)); err == nil {
		t.Fatal("expected error for missing category key")
	}
	if _, err := ReconcileMessageFromJSON([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
