package services

import (
	"context"
	"time"
)

// Cache is the subset of pkg/cache.RedisCache the services use.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher is implemented by pkg/messaging.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// OrderLogger is implemented by pkg/orderlog.Writer.
type OrderLogger interface {
	Append(v any) error
}
