package feed

import (
	"context"

	"chollobot/internal/deal"
)

// Feed receives every successfully published deal so downstream consumers
// can follow what the channel posted. The worker only writes; nothing in
// this process ever reads the feed back.
type Feed interface {
	// Announce appends one published deal to the feed
	Announce(ctx context.Context, d deal.Deal) error

	// Close closes the feed connection
	Close() error
}
