// Package events carries accepted votes to Kafka. Messages are keyed by poll
// id so one poll's votes stay ordered within a partition.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

const DefaultTopic = "vote-events"

type KafkaPublisher struct {
	writer *kafka.Writer
}

var _ ports.VoteEventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}

	return &KafkaPublisher{writer: w}
}

func (kp *KafkaPublisher) Publish(ctx context.Context, event domain.VoteCast) error {
	msg, err := voteMessage(event)
	if err != nil {
		return err
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func voteMessage(event domain.VoteCast) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal vote event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.PollID.String()),
		Value: value,
	}, nil
}
