package dashboard

import "log"

func logf(format string, args ...any) {
	log.Printf("[dashboard] "+format, args...)
}
