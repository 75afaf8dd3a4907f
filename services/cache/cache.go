package cache

import (
	"time"
)

// CacheService stores short-lived vendor rate-limit block keys. A present
// key means the vendor asked us to back off and no request may be sent
// until the key expires.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
