package queue

import (
	"context"
	"sync"
)

// MemoryQueue keeps one buffered channel per queue name. Payloads do not
// survive the process.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	size   int
	closed chan struct{}
	once   sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{
		queues: make(map[string]chan []byte),
		size:   size,
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) channel(name string) chan []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.queues[name]
	if !ok {
		ch = make(chan []byte, q.size)
		q.queues[name] = ch
	}
	return ch
}

// Publish blocks while the queue is full.
func (q *MemoryQueue) Publish(ctx context.Context, name string, payload []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	msg := append([]byte(nil), payload...)

	select {
	case <-q.closed:
		return ErrClosed
	default:
	}

	select {
	case q.channel(name) <- msg:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, name string, h Handler) error {
	if err := validateName(name); err != nil {
		return err
	}
	ch := q.channel(name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.closed:
			return nil
		case payload := <-ch:
			deliver(ctx, name, payload, h)
		}
	}
}

// Len reports how many payloads are waiting on name.
func (q *MemoryQueue) Len(name string) int {
	return len(q.channel(name))
}

// Close stops consumers and rejects further publishes.
func (q *MemoryQueue) Close() {
	q.once.Do(func() { close(q.closed) })
}
