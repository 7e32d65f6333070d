// Package events publishes scrape lifecycle events to a Redis stream so
// downstream consumers can react to finished runs. Publishing is optional and
// strictly fire-and-forget: a failed publish is logged, never returned to the
// pipeline.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TypeScrapeStarted   = "scrape.started"
	TypeScrapeCompleted = "scrape.completed"
	TypeScrapeFailed    = "scrape.failed"
)

// RedisClient is the slice of go-redis the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Event is one lifecycle record on the stream.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Keyword    string    `json:"keyword"`
	Products   int       `json:"products"`
	Reviews    int       `json:"reviews"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

// NewPublisher returns a publisher on the given stream. A nil client yields a
// disabled publisher whose Publish is a no-op.
func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

// Publish appends the event to the stream. Each event gets a fresh UUID and
// timestamp.
func (p *Publisher) Publish(ctx context.Context, eventType, keyword string, products, reviews int, runErr error) {
	if !p.Enabled() {
		return
	}

	event := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Keyword:    keyword,
		Products:   products,
		Reviews:    reviews,
		OccurredAt: time.Now().UTC(),
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "type", eventType, "error", err)
		return
	}

	cmd := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
			"payload":    string(payload),
		},
	})
	if err := cmd.Err(); err != nil {
		p.logger.Error("failed to publish event", "type", eventType, "stream", p.stream, "error", err)
		return
	}

	p.logger.Debug("event published", "type", eventType, "id", event.ID)
}
