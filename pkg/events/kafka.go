package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/JaimeStill/caduceus/pkg/lifecycle"
)

// MessageWriter is the subset of *kafka.Writer used by Kafka.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON messages keyed by Event.Key.
type Kafka struct {
	writer  MessageWriter
	timeout time.Duration
	logger  *slog.Logger
}

// batchTimeout caps how long a single event waits for its batch to fill.
const batchTimeout = 10 * time.Millisecond

// NewKafka creates a publisher writing to cfg.Topic on cfg.Brokers.
func NewKafka(cfg *Config, logger *slog.Logger) *Kafka {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: batchTimeout,
	})
	return NewKafkaWithWriter(writer, cfg.WriteTimeoutDuration(), logger)
}

// NewKafkaWithWriter creates a publisher over an existing writer.
func NewKafkaWithWriter(w MessageWriter, timeout time.Duration, logger *slog.Logger) *Kafka {
	return &Kafka{
		writer:  w,
		timeout: timeout,
		logger:  logger.With("system", "events"),
	}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	value, err := e.Encode()
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Start registers a shutdown hook that flushes and closes the writer.
func (k *Kafka) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown("events", func() {
		<-lc.Context().Done()
		if err := k.Close(); err != nil {
			k.logger.Error("event writer close failed", "error", err)
			return
		}
		k.logger.Info("event writer closed")
	})
	return nil
}
