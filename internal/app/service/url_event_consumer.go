package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/snapurl/snapurl/internal/app/model"
	"go.uber.org/zap"
)

// URLEventConsumer consumes creation events from NATS JetStream. It is
// the analytics hook point; for now each event is only logged.
type URLEventConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

// NewURLEventConsumer creates a new creation-event consumer.
func NewURLEventConsumer(js nats.JetStreamContext, logger *zap.Logger) *URLEventConsumer {
	return &URLEventConsumer{js: js, logger: logger}
}

// Start ensures the stream and durable consumer exist, then begins
// consuming in the background.
func (c *URLEventConsumer) Start() error {
	_, err := c.js.StreamInfo(model.URLStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.URLStreamName,
			Subjects: []string{model.URLStreamSubject},
			MaxBytes: model.URLStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.URLStreamName, model.URLConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.URLStreamName, &nats.ConsumerConfig{
			Durable:   model.URLConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.URLStreamSubject, model.URLConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *URLEventConsumer) consume(sub *nats.Subscription) {
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.URLCreatedEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal url created event", zap.Error(err))
				msg.Nak()
				continue
			}

			c.logger.Info("url created",
				zap.Int64("id", event.ID),
				zap.String("short_code", event.ShortCode),
				zap.Time("created_at", event.CreatedAt),
			)

			msg.Ack()
		}
	}
}
