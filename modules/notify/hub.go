package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/taskflow/pkg/broadcast"
	"github.com/dmitrymomot/taskflow/pkg/logger"
)

// Hub is the process-local channel registry: it maps user ids to the set of
// live connections currently bound to them and fans events out to all of
// them. Many simultaneous bindings may exist for one user (multiple tabs or
// devices). Nothing is persisted and nothing is retried; a publish to a user
// with no binding is the expected common case, not an error.
type Hub struct {
	mu         sync.RWMutex
	users      map[string]*broadcast.MemoryBroadcaster[Event]
	bufferSize int
	log        *slog.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger used for delivery diagnostics.
func WithHubLogger(log *slog.Logger) HubOption {
	return func(h *Hub) { h.log = log }
}

// WithBufferSize sets the per-connection event buffer. A connection that
// falls this far behind is dropped rather than allowed to block mutations.
func WithBufferSize(n int) HubOption {
	return func(h *Hub) { h.bufferSize = n }
}

// NewHub creates an empty registry.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		users:      make(map[string]*broadcast.MemoryBroadcaster[Event]),
		bufferSize: 16,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Bind associates a new live connection with a user id and returns the
// subscriber that will receive the user's events. The binding is released
// when ctx is cancelled, which happens when the connection closes.
func (h *Hub) Bind(ctx context.Context, userID string) broadcast.Subscriber[Event] {
	h.mu.Lock()
	b, ok := h.users[userID]
	if !ok {
		b = broadcast.NewMemoryBroadcaster[Event](h.bufferSize)
		h.users[userID] = b
	}
	h.mu.Unlock()

	sub := b.Subscribe(ctx)

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			// Drop the subscriber before the empty-check so the last
			// connection's departure reliably removes the user entry.
			b.Unsubscribe(sub)
			h.release(userID)
		}()
	}

	return sub
}

// Publish delivers an event to every connection bound to userID.
// At-most-once: events for users without a binding are dropped silently.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	b, ok := h.users[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	_ = b.Broadcast(context.Background(), broadcast.Message[Event]{Data: event})

	h.log.LogAttrs(context.Background(), slog.LevelDebug, "event published",
		logger.UserID(userID),
		logger.EventName(event.Name),
		logger.Component("notify"),
	)
}

// Bindings reports how many live connections a user currently has.
func (h *Hub) Bindings(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if b, ok := h.users[userID]; ok {
		return b.Len()
	}
	return 0
}

// Close shuts down every broadcaster, terminating all live connections.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, b := range h.users {
		_ = b.Close()
	}
	clear(h.users)
	return nil
}

// release drops the user's broadcaster once its last connection is gone, so
// the registry doesn't accumulate entries for users who disconnected.
func (h *Hub) release(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.users[userID]; ok && b.Len() == 0 {
		_ = b.Close()
		delete(h.users, userID)
	}
}
