package natsqueue

import (
	"errors"
	"testing"
)

func TestDecideAckTable(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name       string
		outcome    Outcome[any]
		delivered  uint64
		maxDeliver int64
		enableDLQ  bool
		wantAction ackAction
		wantReason DLQReason
	}{
		{
			name:       "success always acks regardless of kind",
			outcome:    Outcome[any]{Err: nil},
			delivered:  3,
			maxDeliver: 5,
			enableDLQ:  true,
			wantAction: actionAck,
		},
		{
			name:       "abort with dlq enabled routes to dlq then ack",
			outcome:    Outcome[any]{Err: boom, Kind: Abort},
			delivered:  1,
			maxDeliver: 5,
			enableDLQ:  true,
			wantAction: actionDLQThenAck,
			wantReason: DLQReasonAbort,
		},
		{
			name:       "abort with dlq disabled terminates",
			outcome:    Outcome[any]{Err: boom, Kind: Abort},
			delivered:  1,
			maxDeliver: 5,
			enableDLQ:  false,
			wantAction: actionTerm,
		},
		{
			name:       "transient exhausted with dlq enabled routes to dlq then ack",
			outcome:    Outcome[any]{Err: boom, Kind: Transient},
			delivered:  5,
			maxDeliver: 5,
			enableDLQ:  true,
			wantAction: actionDLQThenAck,
			wantReason: DLQReasonMaxDeliver,
		},
		{
			name:       "transient exhausted with dlq disabled terminates",
			outcome:    Outcome[any]{Err: boom, Kind: Transient},
			delivered:  6,
			maxDeliver: 5,
			enableDLQ:  false,
			wantAction: actionTerm,
		},
		{
			name:       "transient not yet exhausted naks for retry",
			outcome:    Outcome[any]{Err: boom, Kind: Transient},
			delivered:  2,
			maxDeliver: 5,
			enableDLQ:  true,
			wantAction: actionNak,
		},
		{
			name:       "zero max_deliver never counts as exhausted",
			outcome:    Outcome[any]{Err: boom, Kind: Transient},
			delivered:  1000,
			maxDeliver: 0,
			enableDLQ:  true,
			wantAction: actionNak,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			action, reason := decideAck(c.outcome, c.delivered, c.maxDeliver, c.enableDLQ)
			if action != c.wantAction {
				t.Errorf("action = %v, want %v", action, c.wantAction)
			}
			if reason != c.wantReason {
				t.Errorf("reason = %q, want %q", reason, c.wantReason)
			}
		})
	}
}
