package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster drops messages for slow consumers rather than blocking the
// broadcast operation. All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	closed      bool
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup // tracks cleanup goroutines
}

// NewMemoryBroadcaster creates a new in-memory broadcaster. The bufferSize
// parameter determines the channel buffer size for each subscriber; a minimum
// of 1 is enforced so sends stay non-blocking.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe creates a new subscriber that will receive all broadcast messages.
// The subscription is automatically cleaned up when the provided context is
// cancelled. If the broadcaster is already closed, returns a closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub := newSubscriber[T](b.bufferSize)
		_ = sub.Close()
		return sub
	}

	sub := newSubscriber[T](b.bufferSize)
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}

	return sub
}

// Broadcast sends a message to all active subscribers. If a subscriber's
// channel is full the message is dropped for that subscriber and it is marked
// for removal. Returns nil even if some subscribers didn't receive the message.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	for sub := range b.subscribers {
		if !sub.send(msg) {
			// Remove slow/closed subscribers asynchronously so a full buffer
			// never stalls the publishing mutation.
			go b.unsubscribe(sub)
		}
	}

	return nil
}

// Len reports the number of live subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close shuts down the broadcaster and closes all subscribers.
// It is safe to call Close multiple times.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	// Wait for cleanup goroutines to avoid races between Close and the
	// async unsubscribe spawned by Broadcast.
	b.cleanupWg.Wait()

	return nil
}

// Unsubscribe removes the subscriber and closes it immediately, without
// waiting for the context cleanup goroutine. Len reflects the removal as soon
// as Unsubscribe returns. Unknown subscribers are ignored.
func (b *MemoryBroadcaster[T]) Unsubscribe(sub Subscriber[T]) {
	if s, ok := sub.(*subscriber[T]); ok {
		b.unsubscribe(s)
	}
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	_ = sub.Close()
}
