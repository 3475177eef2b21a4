package model

import "time"

// URLCreatedEvent is published whenever a new short URL is persisted.
type URLCreatedEvent struct {
	ID        int64     `json:"id"`
	ShortCode string    `json:"short_code"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	URLStreamName     = "URLS"
	URLStreamSubject  = "urls.created"
	URLConsumerName   = "url-analytics"
	URLStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
