package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-taskqueue/natsqueue/natsqueue"
)

const statsChannel = "queue.stats"

// Poller periodically pulls Storage.Stats and broadcasts it to the
// "queue.stats" channel, the dashboard analogue of the teacher's
// WebSocketBroadcaster worker pool draining aggregate updates.
type Poller[T any] struct {
	storage  *natsqueue.Storage[T]
	hub      *Hub
	interval time.Duration
}

// NewPoller builds a Poller with the given polling interval.
func NewPoller[T any](storage *natsqueue.Storage[T], hub *Hub, interval time.Duration) *Poller[T] {
	return &Poller[T]{storage: storage, hub: hub, interval: interval}
}

// Run polls and broadcasts until ctx is cancelled.
func (p *Poller[T]) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller[T]) pollOnce(ctx context.Context) {
	stats, err := p.storage.Stats(ctx)
	if err != nil {
		logf("stats poll failed: %v", err)
		return
	}

	encoded, err := json.Marshal(stats)
	if err != nil {
		logf("stats marshal failed: %v", err)
		return
	}

	var data map[string]any
	if err := json.Unmarshal(encoded, &data); err != nil {
		logf("stats decode into broadcast payload failed: %v", err)
		return
	}

	p.hub.BroadcastToChannel(statsChannel, data)
}
