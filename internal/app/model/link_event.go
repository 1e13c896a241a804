package model

import "time"

// LinkCreated is broadcast over JetStream after a link is persisted, so
// sibling instances can warm their bloom filters and the shared cache
// without a store round-trip.
type LinkCreated struct {
	EventID     string    `json:"event_id"`
	LinkID      int64     `json:"link_id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	LinkStreamName    = "LINKS"
	LinkStreamSubject = "links.created"
	// LinkConsumerName is the durable consumer prefix; each instance
	// appends its own suffix so every instance receives every event.
	LinkConsumerName   = "cache-warmer"
	LinkStreamMaxBytes = 1024 * 1024 * 50 // 50MB
)
