// Package queue moves opaque payloads through named queues.
//
// Delivery is at-least-once: a consumer that dies while a handler runs may see
// the same payload again after restart. Handlers must tolerate redelivery or
// accept its consequences.
package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyQueueName = errors.New("queue name is required")
	ErrClosed         = errors.New("queue closed")
)

// Handler processes one delivered payload. A returned error is logged and the
// payload is still considered consumed.
type Handler func(ctx context.Context, payload []byte) error

type Publisher interface {
	Publish(ctx context.Context, queue string, payload []byte) error
}

// Consumer blocks delivering payloads from queue to h until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, queue string, h Handler) error
}

// deliver runs h and keeps a failing or panicking handler from stopping the
// receive loop.
func deliver(ctx context.Context, queue string, payload []byte, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("queue", queue).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Queue handler panic recovered")
		}
	}()

	if err := h(ctx, payload); err != nil {
		log.Error().
			Err(err).
			Str("queue", queue).
			Str("payload", truncate(payload, 512)).
			Msg("Queue handler failed")
	}
}

func validateName(queue string) error {
	if queue == "" {
		return ErrEmptyQueueName
	}
	return nil
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		return fmt.Sprintf("%s...<truncated %d bytes>", b[:max], len(b)-max)
	}
	return string(b)
}
