package repositories

import "context"

// WebhookDedupStore suppresses duplicate webhook deliveries by idempotency
// key. The in-memory implementation is node-local; multi-instance
// deployments must wire the Redis-backed one or duplicates reappear.
type WebhookDedupStore interface {
	// Has reports whether the key was already processed.
	Has(ctx context.Context, key string) (bool, error)
	// Put marks the key processed. Called before the payload is handled so
	// a concurrent redelivery is rejected even mid-flight.
	Put(ctx context.Context, key string) error
}
