// Package source implements the vendor catalog clients. Each source queries
// its affiliate API, normalizes the raw records and filters them, returning
// only deals that are ready to rank and publish.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chollobot/helpers"
	"chollobot/internal/deal"
	"chollobot/services/cache"
)

// Source defines the contract for all vendor source implementations
type Source interface {
	// FetchDeals retrieves accepted deals from a vendor catalog
	FetchDeals(ctx context.Context) ([]deal.Deal, error)

	// GetName returns the source's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the source
	GetProvider() string
}

// SearchBucket groups keywords under a category label and the vendor's
// search index for that label.
type SearchBucket struct {
	Category string
	Index    string
	Keywords []string
}

// BaseSource provides common functionality for all sources
type BaseSource struct {
	Provider  string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Filter    deal.FilterConfig
}

// GetName returns the source's name for logging
func (s *BaseSource) GetName() string {
	return s.Provider + "Source"
}

// GetProvider returns the provider name
func (s *BaseSource) GetProvider() string {
	return s.Provider
}

// blocked reports whether a previous throttling response still bars this
// source from sending requests.
func (s *BaseSource) blocked() error {
	if s.CacheSvc == nil || s.CacheKey == "" {
		return nil
	}
	if _, err := s.CacheSvc.Get(s.CacheKey); err == nil {
		return fmt.Errorf("%s: blocked for %d more seconds at most", s.CacheKey, s.BlockTime/time.Second)
	}
	return nil
}

// noteRateLimit sets the block key when the vendor throttled us, so the
// next run skips the source until the block expires.
func (s *BaseSource) noteRateLimit(err error) {
	if s.CacheSvc == nil || s.CacheKey == "" {
		return
	}
	if errors.Is(err, helpers.ErrRateLimited) {
		s.CacheSvc.Set(s.CacheKey, []byte(fmt.Sprintf("%d", s.BlockTime/time.Second)), s.BlockTime)
	}
}
