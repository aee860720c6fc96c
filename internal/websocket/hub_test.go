package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ripple-chat/internal/domain"
	"ripple-chat/pkg/logger"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitConnected(t *testing.T, hub *Hub, userID int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.IsConnected(userID)
	}, time.Second, 5*time.Millisecond)
}

func TestNotifyDeliversToRegisteredUsers(t *testing.T) {
	hub := newRunningHub(t)
	client := NewClient(nil, 1)
	hub.Register(client)
	waitConnected(t, hub, 1)

	event := domain.Event{Type: domain.EventNewMessage, ChatID: 3, MessageID: 7, SenderID: 2}
	hub.Notify([]int64{1, 42}, event)

	select {
	case raw := <-client.Send:
		var got domain.Event
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("expected event on the client channel")
	}
}

func TestNotifySkipsDisconnectedUsers(t *testing.T) {
	hub := newRunningHub(t)

	// Must not panic or block with nobody connected.
	hub.Notify([]int64{1, 2, 3}, domain.Event{Type: domain.EventNewMessage})
	require.Equal(t, 0, hub.GetClientCount())
}

func TestRegisterReplacesPreviousConnection(t *testing.T) {
	hub := newRunningHub(t)

	old := NewClient(nil, 1)
	hub.Register(old)
	waitConnected(t, hub, 1)

	replacement := NewClient(nil, 1)
	hub.Register(replacement)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[1] == replacement
	}, time.Second, 5*time.Millisecond)

	// The replaced client's send channel is closed.
	_, open := <-old.Send
	require.False(t, open)

	hub.Notify([]int64{1}, domain.Event{Type: domain.EventStatusUpdate, StatusID: 9})
	select {
	case <-replacement.Send:
	case <-time.After(time.Second):
		t.Fatal("expected event on the replacement connection")
	}
	require.Equal(t, 1, hub.GetClientCount())
}

func TestUnregisterStaleConnectionKeepsNewerOne(t *testing.T) {
	hub := newRunningHub(t)

	old := NewClient(nil, 1)
	hub.Register(old)
	waitConnected(t, hub, 1)

	replacement := NewClient(nil, 1)
	hub.Register(replacement)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[1] == replacement
	}, time.Second, 5*time.Millisecond)

	// The old connection's read loop exits late and unregisters.
	hub.Unregister(old)
	time.Sleep(20 * time.Millisecond)
	require.True(t, hub.IsConnected(1), "stale disconnect must not drop the live connection")
}

func TestBroadcastExcludesGivenUsers(t *testing.T) {
	hub := newRunningHub(t)

	author := NewClient(nil, 1)
	other := NewClient(nil, 2)
	hub.Register(author)
	hub.Register(other)
	waitConnected(t, hub, 1)
	waitConnected(t, hub, 2)

	hub.Broadcast(domain.Event{Type: domain.EventStatusUpdate, StatusID: 5, AuthorID: 1}, 1)

	select {
	case <-other.Send:
	case <-time.After(time.Second):
		t.Fatal("expected event for the other user")
	}
	select {
	case <-author.Send:
		t.Fatal("author must not receive their own status event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendMessageDropsWhenBufferFull(t *testing.T) {
	client := NewClient(nil, 1)
	for i := 0; i < cap(client.Send)+10; i++ {
		client.SendMessage([]byte("x"))
	}
	require.Len(t, client.Send, cap(client.Send))
}
