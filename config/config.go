package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"chollobot/internal/deal"
	"chollobot/pkg/errs"
)

// Config represents the application configuration. It is built once at
// startup and passed into each component; nothing reads ambient process
// state after Load returns.
type Config struct {
	// Telegram credentials
	TelegramToken  string `env:"TG_BOT_TOKEN"`
	TelegramChatID int64  `env:"TG_CHANNEL_ID"`

	// Amazon PA-API credentials and marketplace
	AmazonAccessKey   string `env:"AMAZON_ACCESS_KEY"`
	AmazonSecretKey   string `env:"AMAZON_SECRET_KEY"`
	AmazonPartnerTag  string `env:"AMAZON_TAG"`
	AmazonHost        string `env:"AMAZON_HOST" envDefault:"webservices.amazon.es"`
	AmazonRegion      string `env:"AMAZON_REGION" envDefault:"eu-west-1"`
	AmazonMarketplace string `env:"AMAZON_MARKETPLACE" envDefault:"www.amazon.es"`

	// AliExpress Open Platform credentials
	AliAppKey     string `env:"ALX_APP_KEY"`
	AliAppSecret  string `env:"ALX_SECRET"`
	AliTrackingID string `env:"ALX_PID"`

	// Deal thresholds
	MinDiscountPct   int      `env:"MIN_DISCOUNT" envDefault:"25"`
	MaxDiscountPct   *int     `env:"MAX_DISCOUNT"`
	MaxOriginalPrice *float64 `env:"MAX_ORIGINAL_PRICE"`
	MinOrderCount    *int     `env:"MIN_ORDERS"`
	MinRating        *float64 `env:"MIN_RATING"`

	// Publishing
	MaxPosts         int `env:"MAX_POSTS" envDefault:"8"`
	PostDelaySeconds int `env:"POST_DELAY_SECONDS" envDefault:"3"`

	// Memcache configuration (vendor rate-limit block keys)
	MemcacheAddr string `env:"MEMCACHE_ADDR" envDefault:"localhost:11211"`

	// Redis configuration (published-deal feed; disabled when addr is empty)
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisStream       string `env:"REDIS_STREAM" envDefault:"published_deals"`
	RedisStreamMaxLen int    `env:"REDIS_STREAM_MAXLEN" envDefault:"500"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load parses the configuration from environment variables with defaults
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errs.NewConfiguration("failed to parse environment", err)
	}
	return cfg, nil
}

// Validate checks that every mandatory credential is present. Thresholds
// all have defaults; credentials do not, and the process must not start
// without them.
func (c Config) Validate() error {
	required := map[string]bool{
		"TG_BOT_TOKEN":      c.TelegramToken != "",
		"TG_CHANNEL_ID":     c.TelegramChatID != 0,
		"AMAZON_ACCESS_KEY": c.AmazonAccessKey != "",
		"AMAZON_SECRET_KEY": c.AmazonSecretKey != "",
		"AMAZON_TAG":        c.AmazonPartnerTag != "",
		"ALX_APP_KEY":       c.AliAppKey != "",
		"ALX_SECRET":        c.AliAppSecret != "",
		"ALX_PID":           c.AliTrackingID != "",
	}
	for name, ok := range required {
		if !ok {
			return errs.NewConfiguration(name+" is not set", nil)
		}
	}
	return nil
}

// PostDelay returns the fixed delay observed between successive posts
func (c Config) PostDelay() time.Duration {
	return time.Duration(c.PostDelaySeconds) * time.Second
}

// FeedEnabled reports whether the Redis published-deal feed is configured
func (c Config) FeedEnabled() bool {
	return c.RedisAddr != ""
}

// AmazonFilter builds the acceptance thresholds applied to Amazon records
func (c Config) AmazonFilter() deal.FilterConfig {
	return deal.FilterConfig{
		MinDiscountPct:   c.MinDiscountPct,
		MaxDiscountPct:   c.MaxDiscountPct,
		MaxOriginalPrice: c.MaxOriginalPrice,
		MinRating:        c.MinRating,
	}
}

// AliExpressFilter builds the acceptance thresholds applied to AliExpress
// records. Order volume is only meaningful for this vendor.
func (c Config) AliExpressFilter() deal.FilterConfig {
	return deal.FilterConfig{
		MinDiscountPct:   c.MinDiscountPct,
		MaxDiscountPct:   c.MaxDiscountPct,
		MaxOriginalPrice: c.MaxOriginalPrice,
		MinOrderCount:    c.MinOrderCount,
		MinRating:        c.MinRating,
	}
}
