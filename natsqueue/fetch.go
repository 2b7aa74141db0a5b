package natsqueue

import (
	"context"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	idleBackoff = 100 * time.Millisecond
	busyBackoff = 10 * time.Millisecond
)

// Fetch pulls the next available job, trying High, then Medium, then Low
// in strict order every pass, spending up to config.FetchExpiry waiting on
// each priority before falling through to the next. It blocks until a job
// arrives or ctx is cancelled, applying the same two-speed backoff as the
// original poll loop: a short busyBackoff pace right before handing back a
// found job (so a caller looping tightly on Fetch doesn't hammer the
// broker), and the longer idleBackoff after a whole pass comes up empty
// (spec §4.4).
func (s *Storage[T]) Fetch(ctx context.Context) (*Envelope[T], *Context, error) {
	for {
		for _, p := range priorities {
			env, jctx, err := s.fetchOne(ctx, p)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, natsErr("fetch", ctx.Err())
				}
				logf("fetch", "pull from %s failed, retrying: %v", p, err)
				continue
			}
			if env != nil {
				select {
				case <-ctx.Done():
					return nil, nil, natsErr("fetch", ctx.Err())
				case <-time.After(busyBackoff):
				}
				return env, jctx, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, nil, natsErr("fetch", ctx.Err())
		case <-time.After(idleBackoff):
		}
	}
}

// fetchOne attempts a single bounded pull from priority's consumer,
// returning (nil, nil, nil) if nothing was available within FetchExpiry.
func (s *Storage[T]) fetchOne(ctx context.Context, p Priority) (*Envelope[T], *Context, error) {
	consumer, err := s.getOrCreateConsumer(ctx, p)
	if err != nil {
		return nil, nil, err
	}

	batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(s.config.FetchExpiry))
	if err != nil {
		return nil, nil, natsErr("fetch from "+p.String(), err)
	}

	var msg jetstream.Msg
	for m := range batch.Messages() {
		msg = m
		break
	}
	if err := batch.Error(); err != nil {
		return nil, nil, natsErr("fetch batch from "+p.String(), err)
	}
	if msg == nil {
		return nil, nil, nil
	}

	env, err := decodeEnvelope[T](msg.Data())
	if err != nil {
		logf("fetch", "malformed envelope on %s, terminating delivery: %v", p, err)
		if termErr := msg.Term(); termErr != nil {
			logf("fetch", "term failed for malformed envelope: %v", termErr)
		}
		return nil, nil, nil
	}

	var traceCtx context.Context
	if s.config.EnableTracing {
		traceCtx = extractTraceContext(msg.Headers())
	}
	jctx := newContext(msg, traceCtx, s.config.AckWait)
	if traceID := jctx.TraceID(); traceID != "" {
		logf("fetch", "delivering job %s from %s (trace=%s)", env.ID, p, traceID)
	}
	return &env, jctx, nil
}

// FetchBatch drains up to max available jobs across all priorities in a
// single pass, highest priority first, without blocking for more once a
// priority's consumer reports nothing pending.
func (s *Storage[T]) FetchBatch(ctx context.Context, max int) ([]*Envelope[T], []*Context, error) {
	envs := make([]*Envelope[T], 0, max)
	ctxs := make([]*Context, 0, max)

	for _, p := range priorities {
		for len(envs) < max {
			env, jctx, err := s.fetchOne(ctx, p)
			if err != nil {
				return envs, ctxs, err
			}
			if env == nil {
				break
			}
			envs = append(envs, env)
			ctxs = append(ctxs, jctx)
		}
		if len(envs) >= max {
			break
		}
	}

	return envs, ctxs, nil
}
