package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/config"
)

// fetchBackoff is the pause after a fetch failed on every retry attempt.
const fetchBackoff = 500 * time.Millisecond

// jobHandler defines the interface for handling compression job messages.
type jobHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// client is the part of the Kafka consumer the loop uses.
type client interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msg kafka.Message) error
	Close() error
}

// Consumer reads compression jobs from Kafka and passes them to a handler.
type Consumer struct {
	client     client
	jobHandler jobHandler
	topic      string
	strategy   retry.Strategy
}

// New creates a new Consumer.
// - cfg: Kafka configuration struct
// - s: retry strategy
// - jh: handler for compression job messages
func New(cfg *config.Kafka, s retry.Strategy, jh jobHandler) *Consumer {
	return newConsumer(wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID), cfg.Topic, s, jh)
}

func newConsumer(c client, topic string, s retry.Strategy, jh jobHandler) *Consumer {
	return &Consumer{
		client:     c,
		jobHandler: jh,
		topic:      topic,
		strategy:   s,
	}
}

// Consume continuously fetches messages from Kafka, processes them using the handler,
// and commits offsets after successful processing. It stops gracefully on context cancellation.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	zlog.Logger.Info().
		Str("topic", c.topic).
		Msg("starting consumer")

	for {
		// Exit if context is canceled (graceful shutdown).
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		// Fetch a message from Kafka with retries.
		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.client.Fetch(ctx)
			return fetchErr
		}, c.strategy)

		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			zlog.Logger.Err(err).Msg("failed to fetch message")
			select {
			case <-ctx.Done():
			case <-time.After(fetchBackoff):
			}
			continue
		}

		if err := c.jobHandler.Handle(ctx, msg); err != nil {
			zlog.Logger.Err(err).
				Str("message", string(msg.Value)).
				Msg("failed to handle job")
			continue
		}

		// Commit the message with retries.
		err = retry.Do(func() error {
			return c.client.Commit(ctx, msg)
		}, c.strategy)
		if err != nil {
			zlog.Logger.Err(err).Msg("failed to commit message after retries")
			continue
		}

		zlog.Logger.Info().
			Int64("offset", msg.Offset).
			Msg("job handled successfully")
	}
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.client.Close()
}
