package natsqueue

import "testing"

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, id := newEnvelope(testPayload{Name: "job-1", Count: 3}, High, "apalis")
	if env.ID != id {
		t.Fatalf("newEnvelope returned mismatched id: env.ID=%q id=%q", env.ID, id)
	}
	if env.Priority != High {
		t.Fatalf("env.Priority = %v, want High", env.Priority)
	}

	encoded, err := encodeEnvelope(env)
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}

	decoded, err := decodeEnvelope[testPayload](encoded)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	if decoded.ID != env.ID {
		t.Errorf("decoded.ID = %q, want %q", decoded.ID, env.ID)
	}
	if decoded.Data != env.Data {
		t.Errorf("decoded.Data = %+v, want %+v", decoded.Data, env.Data)
	}
	if decoded.Priority != High {
		t.Errorf("decoded.Priority = %v, want High", decoded.Priority)
	}
}

func TestPriorityJSONRoundTrip(t *testing.T) {
	for _, p := range []Priority{High, Medium, Low} {
		env, _ := newEnvelope(testPayload{}, p, "apalis")
		b, err := encodeEnvelope(env)
		if err != nil {
			t.Fatalf("encodeEnvelope(%v): %v", p, err)
		}
		decoded, err := decodeEnvelope[testPayload](b)
		if err != nil {
			t.Fatalf("decodeEnvelope(%v): %v", p, err)
		}
		if decoded.Priority != p {
			t.Errorf("round-tripped priority = %v, want %v", decoded.Priority, p)
		}
	}
}

func TestPriorityUnmarshalRejectsUnknown(t *testing.T) {
	var p Priority
	err := p.UnmarshalJSON([]byte(`"urgent"`))
	if err == nil {
		t.Fatal("expected error unmarshaling unknown priority, got nil")
	}
	// Formatting the error must not panic (a prior version returned
	// *json.UnmarshalTypeError with a nil Type, which panics in Error()).
	if msg := err.Error(); msg == "" {
		t.Fatal("expected non-empty error message")
	}
}

func TestDLQEnvelopeRoundTrip(t *testing.T) {
	env := DLQEnvelope{
		OriginalTaskID: "abc-123",
		Error:          "boom",
		Attempts:       "5",
		DeliveredCount: 5,
		DLQReason:      DLQReasonMaxDeliver,
		Payload:        []byte(`{"hello":"world"}`),
	}
	b, err := encodeDLQEnvelope(env)
	if err != nil {
		t.Fatalf("encodeDLQEnvelope: %v", err)
	}
	decoded, err := DecodeDLQEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeDLQEnvelope: %v", err)
	}
	if decoded.OriginalTaskID != env.OriginalTaskID {
		t.Errorf("OriginalTaskID = %q, want %q", decoded.OriginalTaskID, env.OriginalTaskID)
	}
	if decoded.DLQReason != DLQReasonMaxDeliver {
		t.Errorf("DLQReason = %q, want %q", decoded.DLQReason, DLQReasonMaxDeliver)
	}
	if decoded.DeliveredCount != 5 {
		t.Errorf("DeliveredCount = %d, want 5", decoded.DeliveredCount)
	}
	if decoded.Attempts != "5" {
		t.Errorf("Attempts = %q, want %q", decoded.Attempts, "5")
	}
}
