package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setCredentials(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("TG_CHANNEL_ID", "-1001234567890")
	t.Setenv("AMAZON_ACCESS_KEY", "ak")
	t.Setenv("AMAZON_SECRET_KEY", "sk")
	t.Setenv("AMAZON_TAG", "mytag-21")
	t.Setenv("ALX_APP_KEY", "appkey")
	t.Setenv("ALX_SECRET", "appsecret")
	t.Setenv("ALX_PID", "default")
}

func TestLoadDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 25, cfg.MinDiscountPct)
	assert.Equal(t, 8, cfg.MaxPosts)
	assert.Equal(t, 3*time.Second, cfg.PostDelay())
	assert.Equal(t, "webservices.amazon.es", cfg.AmazonHost)
	assert.Equal(t, "eu-west-1", cfg.AmazonRegion)
	assert.Equal(t, "www.amazon.es", cfg.AmazonMarketplace)
	assert.Equal(t, "localhost:11211", cfg.MemcacheAddr)
	assert.Equal(t, "published_deals", cfg.RedisStream)
	assert.Equal(t, 500, cfg.RedisStreamMaxLen)
	assert.Equal(t, "development", cfg.Environment)

	// Optional thresholds are off until configured
	assert.Nil(t, cfg.MaxDiscountPct)
	assert.Nil(t, cfg.MaxOriginalPrice)
	assert.Nil(t, cfg.MinOrderCount)
	assert.Nil(t, cfg.MinRating)

	// The feed stays off without a Redis address
	assert.False(t, cfg.FeedEnabled())
}

func TestLoadOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("MIN_DISCOUNT", "40")
	t.Setenv("MAX_POSTS", "3")
	t.Setenv("MAX_DISCOUNT", "85")
	t.Setenv("MAX_ORIGINAL_PRICE", "200.5")
	t.Setenv("MIN_ORDERS", "100")
	t.Setenv("MIN_RATING", "4.0")
	t.Setenv("POST_DELAY_SECONDS", "5")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 40, cfg.MinDiscountPct)
	assert.Equal(t, 3, cfg.MaxPosts)
	assert.Equal(t, 85, *cfg.MaxDiscountPct)
	assert.Equal(t, 200.5, *cfg.MaxOriginalPrice)
	assert.Equal(t, 100, *cfg.MinOrderCount)
	assert.Equal(t, 4.0, *cfg.MinRating)
	assert.Equal(t, 5*time.Second, cfg.PostDelay())
	assert.True(t, cfg.FeedEnabled())
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
}

func TestValidate(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	// Every credential is mandatory
	missing := cfg
	missing.AmazonSecretKey = ""
	assert.Error(t, missing.Validate())

	missing = cfg
	missing.TelegramToken = ""
	assert.Error(t, missing.Validate())

	missing = cfg
	missing.AliTrackingID = ""
	assert.Error(t, missing.Validate())
}

func TestValidateFailsWithoutCredentials(t *testing.T) {
	// A bare environment parses fine but must not validate
	os.Clearenv()

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestFilterConfigs(t *testing.T) {
	setCredentials(t)
	t.Setenv("MIN_DISCOUNT", "30")
	t.Setenv("MIN_ORDERS", "50")
	t.Setenv("MIN_RATING", "4.0")

	cfg, err := Load()
	assert.NoError(t, err)

	amz := cfg.AmazonFilter()
	assert.Equal(t, 30, amz.MinDiscountPct)
	assert.Equal(t, 4.0, *amz.MinRating)
	// Order volume is an AliExpress-only signal
	assert.Nil(t, amz.MinOrderCount)

	alx := cfg.AliExpressFilter()
	assert.Equal(t, 30, alx.MinDiscountPct)
	assert.Equal(t, 50, *alx.MinOrderCount)
	assert.Equal(t, 4.0, *alx.MinRating)
}
