package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"chollobot/internal/deal"
)

func TestRedisFeedAnnounce(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	stream := "test_published_deals"
	client.Del(ctx, stream)

	f := NewRedisFeed("localhost:6379", 0, stream, 10)
	defer f.Close()

	d := deal.Deal{
		Source:       deal.SourceAmazon,
		Title:        "SSD 1TB",
		DiscountPct:  40,
		AffiliateURL: "https://www.amazon.es/dp/B000?tag=mytag-21",
	}
	assert.NoError(t, f.Announce(ctx, d))

	msgs, err := client.XRangeN(ctx, stream, "-", "+", 1).Result()
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)

	var got deal.Deal
	raw, ok := msgs[0].Values["deal"].(string)
	assert.True(t, ok)
	assert.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, d.Title, got.Title)
	assert.Equal(t, d.DiscountPct, got.DiscountPct)

	// Old entries are trimmed to the configured maximum
	for i := 0; i < 30; i++ {
		assert.NoError(t, f.Announce(ctx, d))
	}
	time.Sleep(50 * time.Millisecond)
	length, err := client.XLen(ctx, stream).Result()
	assert.NoError(t, err)
	assert.LessOrEqual(t, length, int64(31))

	client.Del(ctx, stream)
}
