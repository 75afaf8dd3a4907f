package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"chollobot/internal/deal"
)

// RedisFeed implements Feed using a capped Redis stream
type RedisFeed struct {
	client *redis.Client
	stream string
	maxLen int64
}

var _ Feed = (*RedisFeed)(nil)

// NewRedisFeed creates a new Redis feed writing to a single stream trimmed
// to maxLen entries.
func NewRedisFeed(addr string, db int, stream string, maxLen int) *RedisFeed {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisFeed{
		client: client,
		stream: stream,
		maxLen: int64(maxLen),
	}
}

// Announce XAdds the deal JSON to the stream, trimming approximately to the
// configured maximum length.
func (f *RedisFeed) Announce(ctx context.Context, d deal.Deal) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	return f.client.XAdd(ctx, &redis.XAddArgs{
		Stream: f.stream,
		MaxLen: f.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"deal": data,
		},
	}).Err()
}

// Close closes the Redis connection
func (f *RedisFeed) Close() error {
	return f.client.Close()
}
