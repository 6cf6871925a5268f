package feed

import (
	"context"
	"fmt"
	"time"

	"cricketbook/internal/logger"
	"cricketbook/internal/models"
	"cricketbook/internal/sse"
)

// Publisher announces writes to the live feeds.
type Publisher interface {
	Publish(ctx context.Context, topic models.Topic, action models.ChangeAction, documentID string)
}

// ChangeProducer ships change events to the broker.
type ChangeProducer interface {
	PublishChange(ctx context.Context, event models.ChangeEvent) error
}

// Broadcaster publishes to the local hub, or to Kafka when a producer is set.
// With Kafka, the relay consumer feeds every instance's hub, including this
// one. A failed broker write falls back to the local hub.
type Broadcaster struct {
	hub      *sse.Hub
	producer ChangeProducer
	origin   string
	logger   *logger.Logger
}

func NewBroadcaster(hub *sse.Hub, producer ChangeProducer, origin string, logger *logger.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, producer: producer, origin: origin, logger: logger}
}

func (b *Broadcaster) Publish(ctx context.Context, topic models.Topic, action models.ChangeAction, documentID string) {
	event := models.ChangeEvent{
		Topic:      topic,
		Action:     action,
		DocumentID: documentID,
		OccurredAt: time.Now().UTC(),
		Origin:     b.origin,
	}

	if b.producer != nil {
		err := b.producer.PublishChange(ctx, event)
		if err == nil {
			return
		}
		b.logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s change for %s, delivering locally: %v", topic, documentID, err))
	}

	b.hub.Publish(event)
}

// Relay copies events read from the broker into the local hub.
func Relay(hub *sse.Hub) func(models.ChangeEvent) {
	return func(event models.ChangeEvent) {
		hub.Publish(event)
	}
}
