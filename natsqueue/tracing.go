package natsqueue

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// natsHeaderCarrier adapts nats.Header to otel's TextMapCarrier, the
// equivalent of the original crate's NatsHeaderInjector/NatsHeaderExtractor
// and of the teacher's http.Header-based InjectContextIntoEvent /
// ExtractContextFromEvent (internal/tracing/tracing.go), retargeted from
// HTTP headers to NATS message headers.
type natsHeaderCarrier nats.Header

func (c natsHeaderCarrier) Get(key string) string {
	if v := nats.Header(c).Values(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c natsHeaderCarrier) Set(key, value string) {
	nats.Header(c).Set(key, value)
}

func (c natsHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// injectTraceContext writes the W3C traceparent/tracestate headers for
// ctx into headers, when tracing is enabled (spec §4.3, §9).
func injectTraceContext(ctx context.Context, headers nats.Header) {
	otel.GetTextMapPropagator().Inject(ctx, natsHeaderCarrier(headers))
}

// extractTraceContext reconstructs a trace context from message headers,
// returning nil if none was present. Used by the fetch loop to populate
// Context.TraceContext() for the consumer side.
func extractTraceContext(headers nats.Header) context.Context {
	if headers == nil {
		return nil
	}
	if headers.Get("traceparent") == "" {
		return nil
	}
	return otel.GetTextMapPropagator().Extract(context.Background(), natsHeaderCarrier(headers))
}
