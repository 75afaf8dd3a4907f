package main

import (
	"context"

	"chollobot/config"
	"chollobot/internal/caption"
	"chollobot/internal/source"
	"chollobot/logger"
	"chollobot/services/cache"
	"chollobot/services/feed"
	"chollobot/services/publisher"
	"chollobot/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("min_discount", cfg.MinDiscountPct).
		Int("max_posts", cfg.MaxPosts).
		Msg("Starting run")

	// One pass per invocation; scheduling is the operator's concern.
	ctx := context.Background()

	cacheSvc := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Using Memcache at %s for rate-limit blocks", cfg.MemcacheAddr)

	pub, err := publisher.NewTelegramPublisher(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram publisher")
	}
	defer pub.Close()

	var dealFeed feed.Feed
	if cfg.FeedEnabled() {
		redisFeed := feed.NewRedisFeed(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		defer redisFeed.Close()
		dealFeed = redisFeed
		logger.Info("Announcing published deals to Redis at %s (stream: %s)", cfg.RedisAddr, cfg.RedisStream)
	}

	sources := []source.Source{
		source.NewAmazonSource(source.AmazonConfig{
			AccessKey:   cfg.AmazonAccessKey,
			SecretKey:   cfg.AmazonSecretKey,
			PartnerTag:  cfg.AmazonPartnerTag,
			Host:        cfg.AmazonHost,
			Region:      cfg.AmazonRegion,
			Marketplace: cfg.AmazonMarketplace,
			Filter:      cfg.AmazonFilter(),
		}, cacheSvc),
		source.NewAliExpressSource(source.AliExpressConfig{
			AppKey:     cfg.AliAppKey,
			AppSecret:  cfg.AliAppSecret,
			TrackingID: cfg.AliTrackingID,
			Filter:     cfg.AliExpressFilter(),
		}, cacheSvc),
	}

	w := worker.NewWorker(
		sources,
		pub,
		dealFeed,
		caption.NewFormatter(),
		logger.ForWorker(),
		cfg.MaxPosts,
		cfg.PostDelay(),
	)

	w.Run(ctx)

	log.Info().Msg("Run complete")
}
