package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const retryBackoff = time.Second

// RedisQueue stores each named queue as a Redis list. A payload being handled
// is parked on "<queue>:processing" until the handler returns.
type RedisQueue struct {
	client      *redis.Client
	pollTimeout time.Duration
}

func NewRedisQueue(client *redis.Client, pollTimeout time.Duration) *RedisQueue {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{client: client, pollTimeout: pollTimeout}
}

func processingKey(queue string) string {
	return queue + ":processing"
}

func (q *RedisQueue) Publish(ctx context.Context, name string, payload []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := q.client.RPush(ctx, name, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", name, err)
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context, name string, h Handler) error {
	if err := validateName(name); err != nil {
		return err
	}

	log.Info().Str("queue", name).Msg("Queue consumer started")
	for {
		if ctx.Err() != nil {
			log.Info().Str("queue", name).Msg("Queue consumer stopped")
			return nil
		}

		payload, err := q.client.BLMove(ctx, name, processingKey(name), "LEFT", "RIGHT", q.pollTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Str("queue", name).Msg("Queue receive failed")
			select {
			case <-ctx.Done():
			case <-time.After(retryBackoff):
			}
			continue
		}

		deliver(ctx, name, []byte(payload), h)

		// Ack even when shutting down, otherwise the payload is redelivered.
		if err := q.client.LRem(context.WithoutCancel(ctx), processingKey(name), 1, payload).Err(); err != nil {
			log.Error().Err(err).Str("queue", name).Msg("Queue ack failed")
		}
	}
}

// RequeueInflight moves payloads abandoned by a crashed consumer back to the
// head of the queue. Call it once per process, before any Consume loop starts.
func (q *RedisQueue) RequeueInflight(ctx context.Context, name string) (int, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	moved := 0
	for {
		err := q.client.LMove(ctx, processingKey(name), name, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("requeue %s: %w", name, err)
		}
		moved++
	}
	if moved > 0 {
		log.Warn().Str("queue", name).Int("count", moved).Msg("Requeued in-flight payloads")
	}
	return moved, nil
}
