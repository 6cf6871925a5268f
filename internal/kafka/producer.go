package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
	logger *logger.Logger
}

func NewProducer(brokers []string, topic string, logger *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, logger: logger}
}

// PublishChange streams a change event keyed by document id, so changes to
// one document stay ordered within a partition.
func (p *Producer) PublishChange(ctx context.Context, event models.ChangeEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.logger.LogKafka("PUBLISH", p.Writer.Topic, fmt.Sprintf("%s %s %s", event.Topic, event.Action, event.DocumentID))

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(string(event.Topic) + "/" + event.DocumentID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
