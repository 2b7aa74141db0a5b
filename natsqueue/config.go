package natsqueue

import "time"

// Config holds every recognized storage option (spec §3 Data Model table).
type Config struct {
	// Namespace prefixes every stream, subject and consumer name.
	Namespace string
	// MaxDeliver is the number of attempts before a transient failure is
	// routed to the DLQ.
	MaxDeliver int64
	// AckWait is the broker-side visibility timeout per delivery.
	AckWait time.Duration
	// NumReplicas is the stream replication factor.
	NumReplicas int
	// EnableDLQ provisions the DLQ stream and routes exhausted/aborted
	// jobs to it.
	EnableDLQ bool
	// MaxAckPending bounds the unacked ceiling per consumer.
	MaxAckPending int64
	// FetchExpiry is the per-priority fetch budget before the loop falls
	// through to the next priority.
	FetchExpiry time.Duration
	// NakBackoff is the ordered list of retry delays; the last value
	// repeats once exhausted.
	NakBackoff []time.Duration
	// EnableTracing injects/extracts W3C trace context in message headers.
	EnableTracing bool
}

// DefaultConfig mirrors the teacher's DefaultNATSConfig constant block,
// extended with the priority-queue-specific fields.
func DefaultConfig() Config {
	return Config{
		Namespace:     "apalis",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		NumReplicas:   1,
		EnableDLQ:     true,
		MaxAckPending: 100,
		FetchExpiry:   100 * time.Millisecond,
		NakBackoff: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			500 * time.Millisecond,
			time.Second,
			2 * time.Second,
			5 * time.Second,
		},
		EnableTracing: true,
	}
}

// backoffFor returns the nak delay for a message that has been delivered
// `delivered` times (1-based), per spec §4.5:
// nak_backoff[min(delivered-1, len-1)].
func (c Config) backoffFor(delivered uint64) time.Duration {
	if len(c.NakBackoff) == 0 {
		return 0
	}
	idx := int(delivered) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.NakBackoff) {
		idx = len(c.NakBackoff) - 1
	}
	return c.NakBackoff[idx]
}
