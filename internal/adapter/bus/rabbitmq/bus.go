// Package rabbitmq dispatches job ids over an AMQP queue. The queue's
// acknowledgement semantics are what keep each job id with at most one
// active processor at a time.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"framex/internal/infrastructure/logger"
	"framex/internal/port"
)

type message struct {
	JobID string `json:"job_id"`
}

type Bus struct {
	conn  *amqp.Connection
	queue string
}

func NewBus(url, queue string) (*Bus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return &Bus{conn: conn, queue: queue}, nil
}

func (b *Bus) Close() error {
	return b.conn.Close()
}

func (b *Bus) EnqueueProcess(ctx context.Context, jobID string) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := b.declareQueue(ch); err != nil {
		return err
	}

	body, err := json.Marshal(message{JobID: jobID})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", b.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish job %s: %w", jobID, err)
	}
	return nil
}

// Consume delivers job ids to handler until ctx is cancelled. A handler error
// nacks the delivery back onto the queue for redelivery; malformed payloads
// are dropped.
func (b *Bus) Consume(ctx context.Context, handler func(ctx context.Context, jobID string) error) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := b.declareQueue(ch); err != nil {
		return err
	}

	deliveries, err := ch.Consume(b.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			var msg message
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				logger.Error.Printf("drop malformed message: %v", err)
				_ = d.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg.JobID); err != nil {
				logger.Error.Printf("job %s handler failed, requeueing: %v", msg.JobID, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (b *Bus) declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(b.queue, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", b.queue, err)
	}
	return q, nil
}

var _ port.MessageBus = (*Bus)(nil)
