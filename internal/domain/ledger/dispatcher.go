package ledger

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/shopspring/decimal"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/logger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/queue"
)

// Debiter applies a debit to the wallet owned by email.
type Debiter interface {
	Debit(ctx context.Context, email string, amount decimal.Decimal) error
}

// Dispatcher moves Ledger Messages over one named queue. The purchase side
// uses Send; the wallet side uses Run, which feeds Receive.
type Dispatcher struct {
	queue     string
	publisher queue.Publisher
	debiter   Debiter
}

// NewDispatcher builds a dispatcher. Either half may be nil when a process
// only sends or only receives.
func NewDispatcher(queueName string, publisher queue.Publisher, debiter Debiter) *Dispatcher {
	return &Dispatcher{
		queue:     queueName,
		publisher: publisher,
		debiter:   debiter,
	}
}

func (d *Dispatcher) Queue() string {
	return d.queue
}

// Send serializes msg and publishes it. Every failure wraps ErrTransport.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if d.publisher == nil {
		return fmt.Errorf("%w: no publisher configured", ErrTransport)
	}

	payload, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrTransport, err)
	}

	if err := d.publisher.Publish(ctx, d.queue, payload); err != nil {
		return fmt.Errorf("%w: publish to %s: %v", ErrTransport, d.queue, err)
	}

	logger.FromContext(ctx).Info().
		Str("queue", d.queue).
		Str("user_email", msg.Email).
		Str("amount", msg.Value.String()).
		Msg("ledger debit dispatched")
	return nil
}

// Receive decodes payload and applies the debit. It never fails: decode
// errors, debit errors and panics are logged and the payload is dropped.
func (d *Dispatcher) Receive(ctx context.Context, payload []byte) {
	ctx = logger.With(ctx, "queue", d.queue)
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("ledger debit panicked, message dropped")
		}
	}()

	msg, err := Decode(payload)
	if err != nil {
		log.Error().
			Err(err).
			Str("payload", truncate(payload, 512)).
			Msg("ledger message dropped")
		return
	}

	if d.debiter == nil {
		log.Error().
			Str("user_email", msg.Email).
			Msg("no debiter configured, ledger message dropped")
		return
	}

	if err := d.debiter.Debit(ctx, msg.Email, msg.Value); err != nil {
		log.Error().
			Err(err).
			Str("user_email", msg.Email).
			Str("amount", msg.Value.String()).
			Msg("ledger debit failed, message dropped")
	}
}

// Run consumes the dispatcher's queue until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, consumer queue.Consumer) error {
	return consumer.Consume(ctx, d.queue, func(ctx context.Context, payload []byte) error {
		d.Receive(ctx, payload)
		return nil
	})
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max]) + "...<truncated>"
	}
	return string(b)
}
