package natsqueue

import "time"

// Handler processes one job's data and returns a Res or error. This is
// the shape the (external) worker framework wraps with middleware; the
// core only needs to decorate it with the heartbeat.
type Handler[T any, Res any] func(ctx *Context, data T) (Res, error)

// ProgressHeartbeatMiddleware wraps handler so that, on entry, it starts
// a cooperative ticker sending Progress() every interval, and stops it on
// every exit path (success, error, or panic) before returning or
// re-panicking. interval must be strictly less than ack_wait.
//
// This is the idiomatic-Go shape of the original's tower Layer/Service
// pair (spec §9): a plain decorator function instead of a trait object.
func ProgressHeartbeatMiddleware[T any, Res any](interval time.Duration, next Handler[T, Res]) Handler[T, Res] {
	return func(ctx *Context, data T) (res Res, err error) {
		guard := ctx.StartProgressHeartbeat(interval)
		defer guard.Stop()
		return next(ctx, data)
	}
}
