package natsqueue

import (
	"context"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

// ackAction is the outcome of the pure ack decision table, kept separate
// from HandleOutcome so the table itself (spec §4.5) is unit-testable
// without a broker connection.
type ackAction int

const (
	actionAck ackAction = iota
	actionTerm
	actionNak
	actionDLQThenAck
)

// decideAck implements the ack state machine table (spec §4.5):
//
//   - success                                      -> ack
//   - Abort, DLQ enabled                            -> dlqThenAck
//   - Abort, DLQ disabled                           -> term
//   - Transient, delivered >= max_deliver, DLQ on   -> dlqThenAck
//   - Transient, delivered >= max_deliver, DLQ off  -> term
//   - Transient, delivered < max_deliver            -> nak
func decideAck(outcome Outcome[any], delivered uint64, maxDeliver int64, enableDLQ bool) (ackAction, DLQReason) {
	if outcome.Err == nil {
		return actionAck, ""
	}

	exhausted := delivered >= 1 && maxDeliver > 0 && delivered >= uint64(maxDeliver)

	switch {
	case outcome.Kind == Abort:
		if enableDLQ {
			return actionDLQThenAck, DLQReasonAbort
		}
		return actionTerm, ""

	case exhausted:
		if enableDLQ {
			return actionDLQThenAck, DLQReasonMaxDeliver
		}
		return actionTerm, ""

	default:
		return actionNak, ""
	}
}

// HandleOutcome applies decideAck to a completed job and carries out the
// resulting broker action, publishing to the DLQ stream first whenever a
// path requires it so the DLQ write and the ack are never reordered.
func (s *Storage[T]) HandleOutcome(ctx context.Context, jctx *Context, env *Envelope[T], outcome Outcome[any]) error {
	if jctx == nil || jctx.Message() == nil {
		return nil
	}

	priorityLabel := Medium.String()
	if env != nil {
		priorityLabel = env.Priority.String()
	}

	delivered := jctx.DeliveredCount()
	action, reason := decideAck(outcome, delivered, s.config.MaxDeliver, s.config.EnableDLQ)

	switch action {
	case actionAck:
		jobsAckedTotal.WithLabelValues(priorityLabel).Inc()
		return jctx.Ack()

	case actionTerm:
		return jctx.Term()

	case actionNak:
		jobsNakedTotal.WithLabelValues(priorityLabel).Inc()
		return jctx.NackWithDelay(s.config.backoffFor(delivered))

	case actionDLQThenAck:
		if err := s.publishDLQ(ctx, env, outcome.Err, delivered, reason); err != nil {
			return err
		}
		return jctx.Ack()

	default:
		return nil
	}
}

func (s *Storage[T]) publishDLQ(ctx context.Context, env *Envelope[T], cause error, delivered uint64, reason DLQReason) error {
	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
	}

	originalID := ""
	var payload []byte
	if env != nil {
		originalID = env.ID
		if encoded, err := encodeEnvelope(*env); err == nil {
			payload = encoded
		}
	}

	dlq := DLQEnvelope{
		OriginalTaskID: originalID,
		Error:          errMsg,
		Attempts:       strconv.FormatUint(delivered, 10),
		DeliveredCount: delivered,
		Timestamp:      time.Now().UTC(),
		DLQReason:      reason,
		Payload:        payload,
	}
	body, err := encodeDLQEnvelope(dlq)
	if err != nil {
		return err
	}

	msg := &nats.Msg{
		Subject: dlqSubjectName(s.config.Namespace),
		Data:    body,
	}
	if _, err := s.js.PublishMsg(ctx, msg); err != nil {
		logf("ack", "failed to publish to dlq: %v", err)
		return natsErr("publish dlq", err)
	}
	dlqMessagesTotal.WithLabelValues(string(reason)).Inc()
	return nil
}
