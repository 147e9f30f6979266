package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"cloud-kitchen-backend/configs"
	"cloud-kitchen-backend/pkg/logger"
	"cloud-kitchen-backend/pkg/messaging"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// order-consumer tails placed orders for the kitchen.
func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		bootLog := logger.New(logger.Options{ServiceName: "order-consumer"})
		bootLog.Fatal().Err(err).Msg("loading configuration")
	}

	log := logger.New(logger.Options{
		ServiceName: "order-consumer",
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
}

func run(cfg *configs.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := messaging.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.OrderTopic).
		Msg("consuming orders")

	if err := consumer.Consume(ctx, handleOrder(log)); err != nil {
		return err
	}
	log.Info().Msg("consumer stopped")
	return nil
}

func handleOrder(log zerolog.Logger) func(context.Context, kafka.Message) error {
	return func(_ context.Context, msg kafka.Message) error {
		var event messaging.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("decoding order event: %w", err)
		}
		if event.Type != messaging.OrderPlaced {
			log.Debug().Str("type", event.Type).Msg("skipping event")
			return nil
		}

		items := zerolog.Arr()
		for _, it := range event.Items {
			items.Str(fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}

		log.Info().
			Str("order_id", event.OrderID).
			Str("customer", event.CustomerName).
			Str("phone", event.Phone).
			Str("delivery", event.DeliveryDate+" "+event.DeliveryTime).
			Array("items", items).
			Float64("total_amount", event.TotalAmount).
			Msg("new order")
		return nil
	}
}
