package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/broadcast"
)

func TestBroadcastDelivery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("every subscriber receives the message", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		t.Cleanup(func() { _ = b.Close() })

		sub1 := b.Subscribe(ctx)
		sub2 := b.Subscribe(ctx)
		require.Equal(t, 2, b.Len())

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"}))

		for _, sub := range []broadcast.Subscriber[string]{sub1, sub2} {
			select {
			case msg := <-sub.Receive(ctx):
				assert.Equal(t, "hello", msg.Data)
			case <-time.After(time.Second):
				t.Fatal("subscriber did not receive the message")
			}
		}
	})

	t.Run("messages are dropped for a full buffer", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[int](1)
		t.Cleanup(func() { _ = b.Close() })

		slow := b.Subscribe(ctx)

		// First fills the buffer, second overflows and marks the subscriber
		// for removal.
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 2}))

		msg := <-slow.Receive(ctx)
		assert.Equal(t, 1, msg.Data)

		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("unsubscribe removes the subscriber immediately", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		t.Cleanup(func() { _ = b.Close() })

		sub := b.Subscribe(ctx)
		require.Equal(t, 1, b.Len())

		b.Unsubscribe(sub)
		assert.Equal(t, 0, b.Len())

		_, open := <-sub.Receive(ctx)
		assert.False(t, open)
	})

	t.Run("context cancellation unsubscribes", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		t.Cleanup(func() { _ = b.Close() })

		subCtx, cancel := context.WithCancel(context.Background())
		_ = b.Subscribe(subCtx)
		require.Equal(t, 1, b.Len())

		cancel()
		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 10*time.Millisecond)
	})
}

func TestBroadcasterClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("close terminates subscribers", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		sub := b.Subscribe(ctx)

		require.NoError(t, b.Close())
		require.NoError(t, b.Close()) // idempotent

		_, open := <-sub.Receive(ctx)
		assert.False(t, open)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("subscribe after close returns a closed subscriber", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		require.NoError(t, b.Close())

		sub := b.Subscribe(ctx)
		_, open := <-sub.Receive(ctx)
		assert.False(t, open)
	})

	t.Run("broadcast after close is a no-op", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		require.NoError(t, b.Close())
		assert.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "late"}))
	})
}
