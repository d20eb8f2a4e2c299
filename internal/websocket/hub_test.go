package websocket

import (
	"context"
	"testing"
	"time"

	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	hub := startHub(t)
	owner, other := uuid.New(), uuid.New()

	mine := &Client{Hub: hub, UserID: owner, Send: make(chan []byte, 1)}
	theirs := &Client{Hub: hub, UserID: other, Send: make(chan []byte, 1)}
	hub.register <- mine
	hub.register <- theirs
	require.Eventually(t, func() bool { return hub.Connected(owner) == 1 && hub.Connected(other) == 1 }, time.Second, 5*time.Millisecond)

	hub.Deliver(context.Background(), owner, events.New(events.DocumentIndexed, map[string]interface{}{"chunks": 3}))

	select {
	case frame := <-mine.Send:
		decoded, err := events.Unmarshal(frame)
		require.NoError(t, err)
		assert.Equal(t, events.DocumentIndexed, decoded.EventType())
	case <-time.After(time.Second):
		t.Fatal("owner received nothing")
	}
	assert.Empty(t, theirs.Send)
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	hub := startHub(t)
	owner := uuid.New()
	c := &Client{Hub: hub, UserID: owner, Send: make(chan []byte, 1)}

	hub.register <- c
	require.Eventually(t, func() bool { return hub.Connected(owner) == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- c
	hub.unregister <- c
	require.Eventually(t, func() bool { return hub.Connected(owner) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_FullBufferDropsFrame(t *testing.T) {
	hub := startHub(t)
	owner := uuid.New()
	c := &Client{Hub: hub, UserID: owner, Send: make(chan []byte, 1)}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.Connected(owner) == 1 }, time.Second, 5*time.Millisecond)

	e := events.New(events.ChatQueried, nil)
	hub.Deliver(context.Background(), owner, e)
	hub.Deliver(context.Background(), owner, e)

	assert.Len(t, c.Send, 1)
	assert.Equal(t, 1, hub.Connected(owner))
}
