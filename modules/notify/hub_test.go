package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/modules/notify"
)

func TestHubPublish(t *testing.T) {
	t.Parallel()

	t.Run("bound user receives the event", func(t *testing.T) {
		t.Parallel()
		hub := notify.NewHub()
		t.Cleanup(func() { _ = hub.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := hub.Bind(ctx, "alice")
		defer sub.Close()

		hub.Publish("alice", notify.Event{
			Name:    notify.EventNotification,
			Message: "hello",
		})

		select {
		case msg := <-sub.Receive(ctx):
			assert.Equal(t, "hello", msg.Data.Message)
			assert.Equal(t, notify.EventNotification, msg.Data.Name)
		case <-time.After(time.Second):
			t.Fatal("expected an event")
		}
	})

	t.Run("publish to unbound user is a silent no-op", func(t *testing.T) {
		t.Parallel()
		hub := notify.NewHub()
		t.Cleanup(func() { _ = hub.Close() })

		// Must not panic or block.
		hub.Publish("ghost", notify.Event{Name: notify.EventTaskAssigned, Message: "x"})
		assert.Equal(t, 0, hub.Bindings("ghost"))
	})

	t.Run("events are not delivered across users", func(t *testing.T) {
		t.Parallel()
		hub := notify.NewHub()
		t.Cleanup(func() { _ = hub.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		aliceSub := hub.Bind(ctx, "alice")
		defer aliceSub.Close()
		bobSub := hub.Bind(ctx, "bob")
		defer bobSub.Close()

		hub.Publish("alice", notify.Event{Name: notify.EventNotification, Message: "for alice"})

		select {
		case msg := <-aliceSub.Receive(ctx):
			assert.Equal(t, "for alice", msg.Data.Message)
		case <-time.After(time.Second):
			t.Fatal("alice should have received the event")
		}

		select {
		case msg, open := <-bobSub.Receive(ctx):
			if open {
				t.Fatalf("bob received an event meant for alice: %+v", msg.Data)
			}
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("every binding of a user receives the event", func(t *testing.T) {
		t.Parallel()
		hub := notify.NewHub()
		t.Cleanup(func() { _ = hub.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tab1 := hub.Bind(ctx, "alice")
		defer tab1.Close()
		tab2 := hub.Bind(ctx, "alice")
		defer tab2.Close()

		require.Equal(t, 2, hub.Bindings("alice"))

		hub.Publish("alice", notify.Event{Name: notify.EventTaskUpdated, Message: "both tabs"})

		select {
		case msg := <-tab1.Receive(ctx):
			assert.Equal(t, "both tabs", msg.Data.Message)
		case <-time.After(time.Second):
			t.Fatal("first binding should have received the event")
		}
		select {
		case msg := <-tab2.Receive(ctx):
			assert.Equal(t, "both tabs", msg.Data.Message)
		case <-time.After(time.Second):
			t.Fatal("second binding should have received the event")
		}
	})
}

func TestHubRelease(t *testing.T) {
	t.Parallel()

	t.Run("cancelling the binding context releases the user entry", func(t *testing.T) {
		t.Parallel()
		hub := notify.NewHub()
		t.Cleanup(func() { _ = hub.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		sub := hub.Bind(ctx, "alice")
		require.Equal(t, 1, hub.Bindings("alice"))

		cancel()
		_ = sub

		require.Eventually(t, func() bool {
			return hub.Bindings("alice") == 0
		}, time.Second, 10*time.Millisecond)

		// Publishing afterwards must be a no-op, not a panic.
		hub.Publish("alice", notify.Event{Name: notify.EventNotification, Message: "late"})
	})

	t.Run("close terminates all bindings", func(t *testing.T) {
		t.Parallel()
		hub := notify.NewHub()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := hub.Bind(ctx, "alice")

		require.NoError(t, hub.Close())
		assert.Equal(t, 0, hub.Bindings("alice"))

		_, open := <-sub.Receive(ctx)
		assert.False(t, open)
	})
}
