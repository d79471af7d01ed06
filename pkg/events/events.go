// Package events publishes domain lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Event is a keyed, timestamped domain notification.
type Event struct {
	Type    string    `json:"type"`
	Key     string    `json:"key"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// Encode serializes the event as JSON.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type noop struct{}

// Noop returns a Publisher that discards every event.
func Noop() Publisher {
	return noop{}
}

func (noop) Publish(context.Context, Event) error { return nil }

// New creates the Publisher for cfg.Driver. Callers check cfg.Enabled first.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case DriverSQS:
		return NewSQS(ctx, cfg, logger)
	case DriverKafka, "":
		return NewKafka(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
