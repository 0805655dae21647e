package queue

import (
	"testing"
	"time"
)

func TestNewMessageValidates(t *testing.T) {
	msg := NewMessage("analysis-123", "request-456", time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC))
	if msg.EnqueuedAt != "2026-01-30T22:00:00Z" || msg.Version != CurrentVersion {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got != msg {
		t.Fatalf("decoded mismatch: got %+v want %+v", got, msg)
	}
}

func TestValidateRejectsBadMessages(t *testing.T) {
	if err := (Message{Version: CurrentVersion}).Validate(); err == nil {
		t.Fatalf("expected missing analysisId error")
	}
	if err := (Message{AnalysisID: "a", Version: 99}).Validate(); err == nil {
		t.Fatalf("expected version error")
	}
}
