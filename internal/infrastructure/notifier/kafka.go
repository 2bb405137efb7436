package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/mufasadev/ramp-reconciler/internal/domain/notifier"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications keyed by txid, so every change of one
// transaction lands on the same partition in order.
type KafkaNotifier struct {
	writer KafkaWriter
	logger zerolog.Logger
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaNotifier(writer KafkaWriter) *KafkaNotifier {
	return &KafkaNotifier{
		writer: writer,
		logger: log.GetLogger(),
	}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n notifier.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.Event.TxID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "audience", Value: []byte(n.Audience)},
			{Key: "event_id", Value: []byte(n.Event.EventID)},
		},
	}

	if err = k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}

	k.logger.Debug().Str("txid", n.Event.TxID).Str("audience", string(n.Audience)).Msg("notification published to kafka")
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
