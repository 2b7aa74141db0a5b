package natsqueue

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/trace"
)

// Context is the runtime handle attached to an in-flight job: an owning
// reference to the broker message (needed to ack) and the extracted trace
// context (if any). The cancellation signal that stops a heartbeat is not
// held here but in the HeartbeatGuard returned by StartProgressHeartbeat.
// It is exclusively owned by the job's request until the ack handler
// drops it; the heartbeat task holds a shared reference for its lifetime
// (spec §3 "Per-delivery context").
type Context struct {
	msg        jetstream.Msg
	traceCtx   context.Context
	ackWait    time.Duration
	heartbeats sync.WaitGroup
}

func newContext(msg jetstream.Msg, traceCtx context.Context, ackWait time.Duration) *Context {
	return &Context{msg: msg, traceCtx: traceCtx, ackWait: ackWait}
}

// Message returns the underlying broker message, or nil for synthetic
// deliveries that never touched the broker (spec §4.5: "messages without
// a broker message attached ... are a no-op").
func (c *Context) Message() jetstream.Msg {
	if c == nil {
		return nil
	}
	return c.msg
}

// TraceContext returns the extracted W3C trace context, or nil if tracing
// was disabled or no traceparent header was present.
func (c *Context) TraceContext() context.Context {
	if c == nil {
		return nil
	}
	return c.traceCtx
}

// TraceID returns the hex-encoded trace ID extracted from the message's
// headers, or "" if tracing was disabled, no traceparent was present, or
// the span context is invalid. Handlers use this to correlate their own
// logs with the producer's trace without pulling in a tracer themselves.
func (c *Context) TraceID() string {
	if c == nil || c.traceCtx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(c.traceCtx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Ack acknowledges the message as successfully processed.
func (c *Context) Ack() error {
	if c == nil || c.msg == nil {
		return nil
	}
	if err := c.msg.Ack(); err != nil {
		return natsErr("ack", err)
	}
	return nil
}

// Nack negatively acknowledges the message for immediate redelivery.
func (c *Context) Nack() error {
	if c == nil || c.msg == nil {
		return nil
	}
	if err := c.msg.Nak(); err != nil {
		return natsErr("nak", err)
	}
	return nil
}

// NackWithDelay negatively acknowledges the message, asking the broker to
// wait at least delay before redelivering it.
func (c *Context) NackWithDelay(delay time.Duration) error {
	if c == nil || c.msg == nil {
		return nil
	}
	if err := c.msg.NakWithDelay(delay); err != nil {
		return natsErr("nak with delay", err)
	}
	return nil
}

// Term discards the message without redelivery.
func (c *Context) Term() error {
	if c == nil || c.msg == nil {
		return nil
	}
	if err := c.msg.Term(); err != nil {
		return natsErr("term", err)
	}
	return nil
}

// Progress sends an in-progress acknowledgement, extending the broker's
// visibility timeout by one ack_wait without consuming the delivery.
func (c *Context) Progress() error {
	if c == nil || c.msg == nil {
		return nil
	}
	if err := c.msg.InProgress(); err != nil {
		return natsErr("progress", err)
	}
	return nil
}

// DeliveredCount returns the broker-reported delivery count for this
// message, the authoritative attempt counter per spec §3/§9.
func (c *Context) DeliveredCount() uint64 {
	if c == nil || c.msg == nil {
		return 0
	}
	meta, err := c.msg.Metadata()
	if err != nil || meta == nil {
		return 0
	}
	return meta.NumDelivered
}

// HeartbeatGuard is the scoped cancellation handle returned by
// StartProgressHeartbeat. Releasing it (directly, or via the
// ProgressHeartbeatMiddleware on every exit path including panic) stops
// the ticker and joins it, bounded by one tick (spec §9).
type HeartbeatGuard struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop signals the heartbeat ticker to stop and waits for it to exit.
func (g *HeartbeatGuard) Stop() {
	if g == nil {
		return
	}
	g.cancel()
	<-g.done
}

// StartProgressHeartbeat spawns a cooperative ticker that calls
// Progress() every interval until the returned guard is released.
// interval must be strictly less than the consumer's ack_wait (spec §3
// invariant, §4.6).
func (c *Context) StartProgressHeartbeat(interval time.Duration) *HeartbeatGuard {
	done := make(chan struct{})
	if c == nil || c.msg == nil {
		close(done)
		return &HeartbeatGuard{cancel: func() {}, done: done}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.heartbeats.Add(1)
	go func() {
		defer close(done)
		defer c.heartbeats.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Progress(); err != nil {
					logf("heartbeat", "progress ack failed: %v", err)
				}
			}
		}
	}()

	return &HeartbeatGuard{cancel: cancel, done: done}
}
