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

type KafkaConsumer struct {
	reader *kafka.Reader
}

var _ ports.VoteEventConsumer = (*KafkaConsumer)(nil)

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    10e3,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		StartOffset: kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: r}
}

// ReadEvent blocks until a message arrives or ctx is done. Context and EOF
// errors are returned untouched so callers can tell a shutdown apart.
func (kc *KafkaConsumer) ReadEvent(ctx context.Context) (domain.VoteCast, error) {
	msg, err := kc.reader.ReadMessage(ctx)
	if err != nil {
		return domain.VoteCast{}, err
	}

	return decodeVoteCast(msg.Value)
}

func (kc *KafkaConsumer) Close() error {
	if err := kc.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}

func decodeVoteCast(value []byte) (domain.VoteCast, error) {
	var event domain.VoteCast
	if err := json.Unmarshal(value, &event); err != nil {
		return domain.VoteCast{}, fmt.Errorf("failed to decode vote event: %w", err)
	}
	return event, nil
}
