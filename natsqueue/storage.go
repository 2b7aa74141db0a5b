package natsqueue

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Storage is the priority-aware job-queue storage adapter: the only
// subject of this package (spec §1). T is the user payload type.
type Storage[T any] struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
}

// New creates a Storage with DefaultConfig().
func New[T any](ctx context.Context, nc *nats.Conn) (*Storage[T], error) {
	return NewWithConfig[T](ctx, nc, DefaultConfig())
}

// NewWithConfig provisions (idempotently, tolerating concurrent
// initialization by other processes) the per-priority streams and, if
// enabled, the DLQ stream, then returns a ready Storage (spec §4.1).
func NewWithConfig[T any](ctx context.Context, nc *nats.Conn, config Config) (*Storage[T], error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, natsErr("create jetstream context", err)
	}

	s := &Storage[T]{nc: nc, js: js, config: config}
	if err := s.provisionStreams(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage[T]) provisionStreams(ctx context.Context) error {
	for _, p := range priorities {
		name := streamName(s.config.Namespace, p)
		cfg := jetstream.StreamConfig{
			Name:        name,
			Subjects:    []string{subjectName(s.config.Namespace, p)},
			Storage:     jetstream.FileStorage,
			MaxAge:      7 * 24 * time.Hour,
			Replicas:    s.config.NumReplicas,
			Retention:   jetstream.WorkQueuePolicy,
			Discard:     jetstream.DiscardOld,
			Duplicates:  120 * time.Second,
			Description: "priority work queue stream for " + p.String(),
		}
		if _, err := s.js.CreateOrUpdateStream(ctx, cfg); err != nil {
			logf("storage", "failed to create stream %s: %v", name, err)
			return natsErr("create stream "+name, err)
		}
		logf("storage", "stream %s ready", name)
	}

	if s.config.EnableDLQ {
		name := dlqStreamName(s.config.Namespace)
		cfg := jetstream.StreamConfig{
			Name:        name,
			Subjects:    []string{dlqSubjectName(s.config.Namespace)},
			Storage:     jetstream.FileStorage,
			MaxAge:      30 * 24 * time.Hour,
			Replicas:    s.config.NumReplicas,
			Retention:   jetstream.LimitsPolicy,
			Description: "dead letter queue",
		}
		if _, err := s.js.CreateOrUpdateStream(ctx, cfg); err != nil {
			logf("storage", "failed to create DLQ stream %s: %v", name, err)
			return natsErr("create dlq stream", err)
		}
		logf("storage", "dlq stream %s ready", name)
	}

	return nil
}

// getOrCreateConsumer returns the single shared durable pull-consumer for
// priority, creating it if absent. Lookup-or-create only: it never
// deletes or reconfigures a live consumer (spec §4.2).
func (s *Storage[T]) getOrCreateConsumer(ctx context.Context, p Priority) (jetstream.Consumer, error) {
	name := consumerName(s.config.Namespace, p)
	cfg := jetstream.ConsumerConfig{
		Name:              name,
		Durable:           name,
		AckPolicy:         jetstream.AckExplicitPolicy,
		AckWait:           s.config.AckWait,
		MaxDeliver:        int(s.config.MaxDeliver),
		FilterSubject:     subjectName(s.config.Namespace, p),
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		MaxAckPending:     int(s.config.MaxAckPending),
		ReplayPolicy:      jetstream.ReplayInstantPolicy,
		InactiveThreshold: 300 * time.Second,
	}

	stream := streamName(s.config.Namespace, p)
	if consumer, err := s.js.Consumer(ctx, stream, name); err == nil {
		return consumer, nil
	}

	consumer, err := s.js.CreateConsumer(ctx, stream, cfg)
	if err != nil {
		return nil, natsErr("create or get consumer "+name, err)
	}
	return consumer, nil
}

// Push publishes job at the default (Medium) priority.
func (s *Storage[T]) Push(ctx context.Context, data T) (string, error) {
	return s.PushWithPriority(ctx, data, Medium)
}

// PushWithPriority assigns a fresh id, builds the envelope with the
// current timestamp, and publishes it to the priority's subject,
// injecting the ambient trace context into the message headers when
// tracing is enabled (spec §4.3).
func (s *Storage[T]) PushWithPriority(ctx context.Context, data T, priority Priority) (string, error) {
	return s.pushWithPriorityAndContext(ctx, data, priority, ctx)
}

// PushWithPriorityAndContext is the same as PushWithPriority but injects
// an explicit trace context instead of the ambient one, for producers
// decoupled from the calling span (spec §4.3, §6).
func (s *Storage[T]) PushWithPriorityAndContext(ctx context.Context, data T, priority Priority, traceCtx context.Context) (string, error) {
	return s.pushWithPriorityAndContext(ctx, data, priority, traceCtx)
}

func (s *Storage[T]) pushWithPriorityAndContext(ctx context.Context, data T, priority Priority, traceCtx context.Context) (string, error) {
	env, id := newEnvelope(data, priority, s.config.Namespace)
	payload, err := encodeEnvelope(env)
	if err != nil {
		return "", err
	}

	msg := &nats.Msg{
		Subject: subjectName(s.config.Namespace, priority),
		Data:    payload,
	}
	if s.config.EnableTracing && traceCtx != nil {
		msg.Header = nats.Header{}
		injectTraceContext(traceCtx, msg.Header)
	}

	ack, err := s.js.PublishMsg(ctx, msg)
	if err != nil {
		return "", natsErr("publish job", err)
	}
	_ = ack

	jobsPushedTotal.WithLabelValues(priority.String()).Inc()
	return id, nil
}

// Len sums the pending message counts across all three priority streams.
func (s *Storage[T]) Len(ctx context.Context) (int64, error) {
	var total int64
	for _, p := range priorities {
		stream, err := s.js.Stream(ctx, streamName(s.config.Namespace, p))
		if err != nil {
			continue
		}
		info, err := stream.Info(ctx)
		if err != nil {
			continue
		}
		total += int64(info.State.Msgs)
	}
	return total, nil
}

// IsEmpty reports whether Len is zero.
func (s *Storage[T]) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.Len(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Vacuum is a no-op: the broker's work-queue retention already reclaims
// acked messages (spec §4.7).
func (s *Storage[T]) Vacuum(ctx context.Context) (int, error) {
	return 0, nil
}

// PushRaw, ScheduleRequest, FetchByID, Update and Reschedule are not
// supported by this backend (spec §1, §4.7).

func (s *Storage[T]) PushRaw(ctx context.Context, data []byte, priority Priority) (string, error) {
	return "", ErrNotSupported
}

func (s *Storage[T]) ScheduleRequest(ctx context.Context, data T, at time.Time) (string, error) {
	return "", ErrNotSupported
}

func (s *Storage[T]) FetchByID(ctx context.Context, id string) (*Envelope[T], error) {
	return nil, ErrNotSupported
}

func (s *Storage[T]) Update(ctx context.Context, env Envelope[T]) error {
	return ErrNotSupported
}

func (s *Storage[T]) Reschedule(ctx context.Context, env Envelope[T], wait time.Duration) error {
	return ErrNotSupported
}
