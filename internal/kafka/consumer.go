package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

// NewConsumer creates a reader for the given topic and group. Live-feed relays
// use a group per instance so every replica sees every change.
func NewConsumer(brokers []string, topic, groupID string, logger *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{reader: reader, logger: logger}
}

// Start reads change events until ctx is cancelled, handing each decoded
// event to handler. Undecodable messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.ChangeEvent)) {
	c.logger.LogKafka("START", c.reader.Config().Topic, "consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				c.logger.LogKafka("STOP", c.reader.Config().Topic, "consumer stopped")
				return
			}
			c.logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			continue
		}

		event, err := DecodeChange(msg.Value)
		if err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message at offset %d: %v", msg.Offset, err))
			continue
		}

		handler(event)
	}
}

// DecodeChange parses a change event message value.
func DecodeChange(value []byte) (models.ChangeEvent, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return models.ChangeEvent{}, err
	}
	if event.Topic == "" {
		return models.ChangeEvent{}, fmt.Errorf("change event without topic")
	}
	return event, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
