package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// fetchRetryDelay spaces out retries after a failed fetch.
var fetchRetryDelay = time.Second

// Event types published on the order topic.
const (
	OrderPlaced = "order.placed"
)

type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (kp *KafkaProducer) writer(topic string) *kafka.Writer {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if writer, exists := kp.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kp.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	kp.writers[topic] = writer
	return writer
}

// Publish sends value as JSON. Messages with the same key land on the same
// partition.
func (kp *KafkaProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", topic, err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
		Time:  time.Now().UTC(),
	}

	if err := kp.writer(topic).WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("writing to %s: %w", topic, err)
	}
	return nil
}

func (kp *KafkaProducer) Close() error {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	var errs error
	for topic, writer := range kp.writers {
		errs = errors.Join(errs, writer.Close())
		delete(kp.writers, topic)
	}
	return errs
}

func NewKafkaConsumer(brokers []string, topic, groupID string, log zerolog.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &KafkaConsumer{reader: reader, log: log}
}

// Consume calls handler for every message until ctx is cancelled. Handler
// errors are logged and the message is still committed.
func (kc *KafkaConsumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		message, err := kc.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// the reader was closed
			if errors.Is(err, io.EOF) {
				return nil
			}
			kc.log.Error().Err(err).Str("topic", kc.reader.Config().Topic).Dur("retry_in", fetchRetryDelay).Msg("reading message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		if err := handler(ctx, message); err != nil {
			kc.log.Error().Err(err).
				Str("topic", message.Topic).
				Int64("offset", message.Offset).
				Msg("handling message")
		}

		if err := kc.reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			kc.log.Error().Err(err).Int64("offset", message.Offset).Msg("committing message")
		}
	}
}

func (kc *KafkaConsumer) Close() error {
	return kc.reader.Close()
}

// OrderEvent is the payload of OrderPlaced.
type OrderEvent struct {
	Type         string           `json:"type"`
	OrderID      string           `json:"order_id"`
	SessionID    string           `json:"session_id"`
	CustomerName string           `json:"customer_name"`
	Phone        string           `json:"phone"`
	DeliveryDate string           `json:"delivery_date"`
	DeliveryTime string           `json:"delivery_time"`
	Items        []OrderEventItem `json:"items"`
	TotalAmount  float64          `json:"total_amount"`
	PlacedAt     time.Time        `json:"placed_at"`
}

type OrderEventItem struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
