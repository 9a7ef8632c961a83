// Package queue carries résumé upload events over RabbitMQ so analysis can
// run in background workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the queue upload events are published to.
const DefaultQueue = "resume.uploaded"

// Event announces a stored résumé that is ready for analysis. A null
// RequiredSkills means the worker uses the active job requirements.
type Event struct {
	ResumeID       uuid.UUID `json:"resume_id"`
	RequiredSkills []string  `json:"required_skills"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// Encode serializes an event for publishing.
func (e Event) Encode() ([]byte, error) {
	if e.ResumeID == uuid.Nil {
		return nil, fmt.Errorf("event has no resume id")
	}
	return json.Marshal(e)
}

// DecodeEvent parses a message body.
func DecodeEvent(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.ResumeID == uuid.Nil {
		return Event{}, fmt.Errorf("event has no resume id")
	}
	return e, nil
}

// RabbitMQ publishes and consumes events on a single durable queue.
type RabbitMQ struct {
	conn  *amqp.Connection
	queue string

	mu  sync.Mutex // guards pub
	pub *amqp.Channel
}

// Dial connects to the broker and declares the queue.
func Dial(url, queueName string) (*RabbitMQ, error) {
	if url == "" {
		return nil, fmt.Errorf("AMQP URL is required")
	}
	if queueName == "" {
		queueName = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &RabbitMQ{conn: conn, queue: queueName, pub: ch}, nil
}

// Queue returns the queue name.
func (r *RabbitMQ) Queue() string {
	return r.queue
}

// Publish sends a persistent event to the queue.
func (r *RabbitMQ) Publish(ctx context.Context, e Event) error {
	body, err := e.Encode()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.pub.PublishWithContext(ctx,
		"",      // default exchange
		r.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    e.ResumeID.String(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event for %s: %w", e.ResumeID, err)
	}
	return nil
}

// Consumer returns a consumer bound to the same queue.
func (r *RabbitMQ) Consumer() *Consumer {
	return &Consumer{mq: r}
}

// Close closes the connection and its channels.
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}
