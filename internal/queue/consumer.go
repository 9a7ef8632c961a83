package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/logger"
)

// Handler processes one event. A returned error requeues the message once;
// a message that fails again is dropped.
type Handler func(ctx context.Context, e Event) error

// Consumer drains the upload queue with a pool of workers.
type Consumer struct {
	mq *RabbitMQ
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context, workers int, handler Handler) error {
	if workers < 1 {
		workers = 1
	}

	ch, err := c.mq.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx,
		c.mq.queue,
		"",    // server-generated consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", c.mq.queue, err)
	}

	logger.Info().Str("queue", c.mq.queue).Int("workers", workers).Msg("consumer started")
	defer logger.Info().Str("queue", c.mq.queue).Msg("consumer stopped")

	return work(ctx, deliveries, workers, handler)
}

// work fans deliveries out to workers goroutines.
func work(ctx context.Context, deliveries <-chan amqp.Delivery, workers int, handler Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case d, ok := <-deliveries:
					if !ok {
						return nil
					}
					process(ctx, d, handler)
				}
			}
		})
	}
	return g.Wait()
}

// process runs handler for one delivery and settles it.
func process(ctx context.Context, d amqp.Delivery, handler Handler) {
	log := logger.Ctx(ctx).With().Str("message_id", d.MessageId).Logger()

	e, err := DecodeEvent(d.Body)
	if err != nil {
		log.Error().Err(err).Msg("dropping malformed event")
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, e); err != nil {
		requeue := !d.Redelivered
		log.Error().Err(err).Str("resume_id", e.ResumeID.String()).Bool("requeue", requeue).Msg("event handler failed")
		_ = d.Nack(false, requeue)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Warn().Err(err).Msg("failed to ack event")
	}
}
