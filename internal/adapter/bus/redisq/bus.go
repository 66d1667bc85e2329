// Package redisq dispatches job ids over a Redis list, LPUSH on the producer
// side and BRPOP on the consumer side. Simpler delivery guarantees than the
// AMQP bus: a job popped by a crashing worker is lost, not redelivered.
package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"framex/internal/infrastructure/logger"
	"framex/internal/port"
)

const popTimeout = 5 * time.Second

type message struct {
	JobID string `json:"job_id"`
}

type Bus struct {
	client *redis.Client
	queue  string
}

func NewBus(addr, password, queue string) *Bus {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Bus{client: client, queue: queue}
}

func (b *Bus) Close() error {
	return b.client.Close()
}

func (b *Bus) EnqueueProcess(ctx context.Context, jobID string) error {
	body, err := json.Marshal(message{JobID: jobID})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := b.client.LPush(ctx, b.queue, body).Err(); err != nil {
		return fmt.Errorf("push job %s: %w", jobID, err)
	}
	return nil
}

// Consume blocks on the queue and delivers job ids to handler until ctx is
// cancelled.
func (b *Bus) Consume(ctx context.Context, handler func(ctx context.Context, jobID string) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := b.client.BRPop(ctx, popTimeout, b.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error.Printf("brpop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		// result is [queue, payload]
		if len(result) != 2 {
			continue
		}

		var msg message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			logger.Error.Printf("drop malformed message: %v", err)
			continue
		}

		if err := handler(ctx, msg.JobID); err != nil {
			logger.Error.Printf("job %s handler failed: %v", msg.JobID, err)
		}
	}
}

var _ port.MessageBus = (*Bus)(nil)
