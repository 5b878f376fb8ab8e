package history

import (
	"context"
	"time"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
)

// Cache holds raw monthly payloads keyed by archive URL. Implementations
// must treat their own failures as misses: caching is an optimization, never
// a reason to fail a fetch.
type Cache interface {
	Get(ctx context.Context, archiveURL string) (*chessdto.MonthPayload, bool)
	Put(ctx context.Context, archiveURL string, payload *chessdto.MonthPayload, ttl time.Duration)
}

const (
	// Closed months never change on chess.com; the current month keeps
	// growing, so it only gets a short grace period.
	ttlPastMonth    = 30 * 24 * time.Hour
	ttlCurrentMonth = 10 * time.Minute
)

// cacheTTL picks a TTL for an archive by whether its month is already closed.
func cacheTTL(ref ArchiveRef, now time.Time) time.Duration {
	now = now.UTC()
	if ref.Year == now.Year() && ref.Month == int(now.Month()) {
		return ttlCurrentMonth
	}
	if ref.afterYM(now.Year(), int(now.Month())) {
		return ttlCurrentMonth
	}
	return ttlPastMonth
}
