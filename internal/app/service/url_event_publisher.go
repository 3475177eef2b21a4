package service

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/snapurl/snapurl/internal/app/model"
)

// URLEventPublisher publishes creation events to NATS JetStream.
type URLEventPublisher struct {
	js nats.JetStreamContext
}

// NewURLEventPublisher creates a new creation-event publisher.
func NewURLEventPublisher(js nats.JetStreamContext) *URLEventPublisher {
	return &URLEventPublisher{js: js}
}

// Publish sends a creation event to the stream. Delivery is
// fire-and-forget from the caller's point of view: the creation path
// logs failures and moves on.
func (p *URLEventPublisher) Publish(event model.URLCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.URLStreamSubject, data, nats.MsgId(event.ShortCode))
	return err
}
