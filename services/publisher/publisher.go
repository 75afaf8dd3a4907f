package publisher

import "context"

// Publisher posts a formatted deal caption with its product image to the
// messaging channel. One call per deal; failures are per-item and the
// caller decides whether to continue.
type Publisher interface {
	// PublishPhoto posts one image with its caption
	PublishPhoto(ctx context.Context, imageURL, caption string) error

	// Close releases the underlying client
	Close() error
}
