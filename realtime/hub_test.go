package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	return hub, cancel, done
}

func TestHub_BroadcastToRoom(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel, done := startHub(t)
	ctx := context.Background()

	alice := NewClient(hub, nil, UserRoom(1))
	bob := NewClient(hub, nil, UserRoom(2))
	hub.Register(ctx, alice)
	hub.Register(ctx, bob)
	require.Eventually(t, func() bool {
		return hub.ClientsInRoom(UserRoom(1)) == 1 && hub.ClientsInRoom(UserRoom(2)) == 1
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(UserRoom(1), Message{Type: MessageNotification, Payload: map[string]int{"id": 9}})

	select {
	case raw := <-alice.Send():
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageNotification, msg.Type)
		assert.Equal(t, "user_1", msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the message")
	}
	assert.Len(t, bob.Send(), 0)

	hub.Unregister(ctx, bob)
	require.Eventually(t, func() bool { return hub.ClientsInRoom(UserRoom(2)) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-bob.Send()
	assert.False(t, open)

	cancel()
	<-done
	_, open = <-alice.Send()
	assert.False(t, open, "hub shutdown closes client queues")
}

func TestHub_BroadcastToEmptyRoom(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel, done := startHub(t)
	hub.BroadcastToRoom("age_group_5", Message{Type: MessageDrawCompleted})
	cancel()
	<-done
}

func TestHub_WebsocketDelivery(t *testing.T) {
	hub, cancel, done := startHub(t)
	defer func() {
		cancel()
		<-done
	}()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, AgeGroupRoom(3))
		hub.Register(r.Context(), client)
		go client.WritePump()
		go client.ReadPump(context.Background())
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientsInRoom(AgeGroupRoom(3)) == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(AgeGroupRoom(3), Message{Type: MessageDrawCompleted, Payload: "A"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageDrawCompleted, msg.Type)
	assert.Equal(t, "A", msg.Payload)
}

func TestParseRoom(t *testing.T) {
	tests := []struct {
		room   string
		kind   string
		id     int
		wantOK bool
	}{
		{"user_12", "user", 12, true},
		{"age_group_3", "age_group", 3, true},
		{"team_3", "", 0, false},
		{"user_", "", 0, false},
		{"user_-1", "", 0, false},
		{"garbage", "", 0, false},
	}
	for _, tt := range tests {
		kind, id, ok := ParseRoom(tt.room)
		assert.Equal(t, tt.wantOK, ok, tt.room)
		assert.Equal(t, tt.kind, kind, tt.room)
		assert.Equal(t, tt.id, id, tt.room)
	}
}

func TestHub_RegisterAndUnregisterAfterRunStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel, done := startHub(t)
	cancel()
	<-done

	// контекст запроса ещё жив, а хаб уже остановлен
	reqCtx := context.Background()
	late := NewClient(hub, nil, AgeGroupRoom(3))

	returned := make(chan struct{})
	go func() {
		hub.Register(reqCtx, late)
		hub.Unregister(reqCtx, late)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked on a stopped hub")
	}
	_, open := <-late.Send()
	assert.False(t, open, "write pump of a late client is released")
	assert.Zero(t, hub.ClientsInRoom(AgeGroupRoom(3)))
}
