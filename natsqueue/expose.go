package natsqueue

import (
	"context"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// PriorityStats is the per-priority slice of QueueInfo: pending jobs not
// yet delivered, and jobs delivered but not yet acknowledged.
type PriorityStats struct {
	Priority      Priority `json:"priority"`
	Pending       uint64   `json:"pending"`
	AckPending    int      `json:"ack_pending"`
	NumRedelivery uint64   `json:"num_redelivered"`
}

// QueueInfo is the aggregate snapshot returned by Stats, the Go
// equivalent of the original crate's NatsQueueInfo (spec §9 Open
// Questions).
type QueueInfo struct {
	Namespace string          `json:"namespace"`
	Priority  []PriorityStats `json:"priority"`
	DLQDepth  uint64          `json:"dlq_depth"`
}

// Stats gathers a live snapshot across every priority stream/consumer and
// pushes it into the Prometheus gauges (queueLagMessages,
// queueAckPendingMessages), mirroring the teacher's UpdateQueueMetrics
// polling loop generalized to three priorities plus a DLQ.
func (s *Storage[T]) Stats(ctx context.Context) (QueueInfo, error) {
	info := QueueInfo{Namespace: s.config.Namespace}

	for _, p := range priorities {
		ps, err := s.priorityStats(ctx, p)
		if err != nil {
			logf("expose", "stats for %s unavailable: %v", p, err)
			continue
		}
		info.Priority = append(info.Priority, ps)
		queueLagMessages.WithLabelValues(p.String()).Set(float64(ps.Pending))
		queueAckPendingMessages.WithLabelValues(p.String()).Set(float64(ps.AckPending))
	}

	if s.config.EnableDLQ {
		if stream, err := s.js.Stream(ctx, dlqStreamName(s.config.Namespace)); err == nil {
			if si, err := stream.Info(ctx); err == nil {
				info.DLQDepth = si.State.Msgs
			}
		}
	}

	return info, nil
}

func (s *Storage[T]) priorityStats(ctx context.Context, p Priority) (PriorityStats, error) {
	consumer, err := s.getOrCreateConsumer(ctx, p)
	if err != nil {
		return PriorityStats{}, err
	}
	ci, err := consumer.Info(ctx)
	if err != nil {
		return PriorityStats{}, natsErr("consumer info for "+p.String(), err)
	}
	return PriorityStats{
		Priority:      p,
		Pending:       ci.NumPending,
		AckPending:    ci.NumAckPending,
		NumRedelivery: uint64(ci.NumRedelivered),
	}, nil
}

// DLQPeek reads up to limit messages off the DLQ stream without acking
// them (a non-destructive ephemeral pull), for inspection tooling.
func (s *Storage[T]) DLQPeek(ctx context.Context, limit int) ([]DLQEnvelope, error) {
	if !s.config.EnableDLQ {
		return nil, ErrNotSupported
	}

	cfg := jetstream.ConsumerConfig{
		AckPolicy:         jetstream.AckNonePolicy,
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		FilterSubject:     dlqSubjectName(s.config.Namespace),
		ReplayPolicy:      jetstream.ReplayInstantPolicy,
		InactiveThreshold: 10 * time.Second,
	}
	consumer, err := s.js.CreateConsumer(ctx, dlqStreamName(s.config.Namespace), cfg)
	if err != nil {
		return nil, natsErr("create dlq peek consumer", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(s.config.FetchExpiry))
	if err != nil {
		return nil, natsErr("fetch dlq peek", err)
	}

	var envs []DLQEnvelope
	for msg := range batch.Messages() {
		env, err := DecodeDLQEnvelope(msg.Data())
		if err != nil {
			continue
		}
		envs = append(envs, env)
	}
	if err := batch.Error(); err != nil {
		return envs, natsErr("dlq peek batch", err)
	}

	return envs, nil
}

// WorkerSnapshot is a point-in-time description of one active worker, for
// the operational HTTP/dashboard surfaces.
type WorkerSnapshot struct {
	ID       string `json:"id"`
	Priority string `json:"priority,omitempty"`
}

// ListWorkers reports one record per priority whose shared consumer
// currently exists, identified by the consumer's durable name — the same
// "worker" notion the original crate's list_workers exposes for a
// shared-consumer backend with no per-process worker registry of its own
// (spec §4.7). This is a lookup only: a missing consumer is silently
// skipped rather than created.
func (s *Storage[T]) ListWorkers(ctx context.Context) ([]WorkerSnapshot, error) {
	workers := []WorkerSnapshot{}
	for _, p := range priorities {
		name := consumerName(s.config.Namespace, p)
		if _, err := s.js.Consumer(ctx, streamName(s.config.Namespace, p), name); err != nil {
			continue
		}
		workers = append(workers, WorkerSnapshot{ID: name, Priority: p.String()})
	}
	return workers, nil
}

// JobSnapshot describes one job for listing/inspection purposes. Only
// populated from data available on the wire envelope; this backend has
// no random-access job store (spec §4.7 FetchByID is unsupported).
type JobSnapshot struct {
	ID        string   `json:"id"`
	Priority  Priority `json:"priority"`
	Attempts  int      `json:"attempts"`
	CreatedAt string   `json:"created_at"`
}

// ListJobs is not supported: the work-queue retention policy means
// pending messages are not addressable without consuming them, and this
// adapter intentionally does not shadow broker state in a side index
// (spec §9 Open Questions decision).
func (s *Storage[T]) ListJobs(ctx context.Context, limit int) ([]JobSnapshot, error) {
	return nil, ErrNotSupported
}
