package natsqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the unit persisted on the wire for every priority stream.
// Attempts is a producer-initialized shadow only; the authoritative
// attempt count at runtime is the broker's delivery metadata (spec §3,
// §9 Open Questions).
type Envelope[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	Priority  Priority  `json:"priority"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	Namespace string    `json:"namespace"`
}

// MarshalJSON renders Priority as its lowercase string form so the wire
// format matches the stream/subject naming convention.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the lowercase string form written by MarshalJSON.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "high":
		*p = High
	case "medium":
		*p = Medium
	case "low":
		*p = Low
	default:
		return fmt.Errorf("unknown priority %q", s)
	}
	return nil
}

func newEnvelope[T any](data T, priority Priority, namespace string) (Envelope[T], string) {
	id := uuid.NewString()
	return Envelope[T]{
		ID:        id,
		Data:      data,
		Priority:  priority,
		Attempts:  0,
		CreatedAt: time.Now().UTC(),
		Namespace: namespace,
	}, id
}

func encodeEnvelope[T any](env Envelope[T]) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, serializationErr("encode envelope", err)
	}
	return b, nil
}

func decodeEnvelope[T any](data []byte) (Envelope[T], error) {
	var env Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return env, serializationErr("decode envelope", err)
	}
	return env, nil
}

// DLQReason classifies why a job was routed to the dead-letter stream.
type DLQReason string

const (
	// DLQReasonAbort marks a job whose handler reported a non-transient
	// (abort) failure.
	DLQReasonAbort DLQReason = "abort_error"
	// DLQReasonMaxDeliver marks a job that exhausted max_deliver retries
	// on a transient failure.
	DLQReasonMaxDeliver DLQReason = "max_deliver_exceeded"
)

// DLQEnvelope is the distinct JSON document written to the DLQ stream.
type DLQEnvelope struct {
	OriginalTaskID string    `json:"original_task_id"`
	Error          string    `json:"error"`
	Attempts       string    `json:"attempts"`
	DeliveredCount uint64    `json:"delivered_count"`
	Timestamp      time.Time `json:"timestamp"`
	DLQReason      DLQReason `json:"dlq_reason"`
	Payload        []byte    `json:"payload"`
}

func encodeDLQEnvelope(env DLQEnvelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, serializationErr("encode dlq envelope", err)
	}
	return b, nil
}

// DecodeDLQEnvelope parses a DLQ stream message body, used by DLQPeek.
func DecodeDLQEnvelope(data []byte) (DLQEnvelope, error) {
	var env DLQEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, serializationErr("decode dlq envelope", err)
	}
	return env, nil
}
