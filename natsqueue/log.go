package natsqueue

import "log"

// logf prefixes every core log line with its originating component, the
// way the teacher tags broadcaster/hub output ("[Broadcaster]",
// "[WebSocket Hub]").
func logf(component, format string, args ...any) {
	log.Printf("[natsqueue:%s] "+format, append([]any{component}, args...)...)
}
