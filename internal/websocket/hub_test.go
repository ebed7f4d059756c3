package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yatube/internal/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func dial(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	upgrader := NewUpgrader([]string{"*"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(userID, conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubNotifyReachesOnlyTarget(t *testing.T) {
	hub := startHub(t)
	alice, bob := uuid.New(), uuid.New()
	aliceConn := dial(t, hub, alice)
	bobConn := dial(t, hub, bob)

	hub.Notify(alice, "message", map[string]string{"text": "hi"})

	aliceConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	var envelope struct {
		Kind    string            `json:"kind"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame, &envelope))
	assert.Equal(t, "message", envelope.Kind)
	assert.Equal(t, "hi", envelope.Payload["text"])

	bobConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's frame")
}

func TestHubUnregistersClosedClient(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	conn := dial(t, hub, userID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyWithoutSessionsIsDropped(t *testing.T) {
	hub := startHub(t)
	hub.Notify(uuid.New(), "event", nil)
	assert.Equal(t, 0, hub.Connections(uuid.New()))
}

func TestUpgraderOrigins(t *testing.T) {
	upgrader := NewUpgrader([]string{"https://yatube.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, upgrader.CheckOrigin(req), "no origin header")

	req.Header.Set("Origin", "https://yatube.example")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, upgrader.CheckOrigin(req))
}
