package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibox/invisibox-web/pkg/broadcast"
)

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := broadcast.New[string](4)
	defer b.Close()

	ctx := context.Background()
	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)

	b.Broadcast(broadcast.Message[string]{Data: "session-invalidated"})

	for _, sub := range []broadcast.Subscriber[string]{first, second} {
		select {
		case msg := <-sub.Receive(ctx):
			assert.Equal(t, "session-invalidated", msg.Data)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive message")
		}
	}
}

func TestBroadcaster_SlowConsumerIsDropped(t *testing.T) {
	t.Parallel()

	b := broadcast.New[int](1)
	defer b.Close()

	ctx := context.Background()
	sub := b.Subscribe(ctx)

	// First fills the buffer; second overflows and drops the subscriber.
	b.Broadcast(broadcast.Message[int]{Data: 1})
	b.Broadcast(broadcast.Message[int]{Data: 2})

	msg, ok := <-sub.Receive(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Data)
}

func TestBroadcaster_CloseClosesSubscribers(t *testing.T) {
	t.Parallel()

	b := broadcast.New[int](1)
	ctx := context.Background()
	sub := b.Subscribe(ctx)

	require.NoError(t, b.Close())

	_, ok := <-sub.Receive(ctx)
	assert.False(t, ok, "receive channel should be closed")

	// Closed broadcaster hands out closed subscribers.
	late := b.Subscribe(ctx)
	_, ok = <-late.Receive(ctx)
	assert.False(t, ok)
}

func TestBroadcaster_ContextCancellationUnsubscribes(t *testing.T) {
	t.Parallel()

	b := broadcast.New[int](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Receive(context.Background()):
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
