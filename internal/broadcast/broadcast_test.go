package broadcast

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := FromJSON(data)
	require.NoError(t, err)
	return msg
}

func TestHubSendsConnectedOnRegister(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	msg := readMessage(t, conn)
	require.Equal(t, TypeConnected, msg.Type)
}

func TestHubBroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)
	readMessage(t, conn) // connected handshake

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(Reload("/a/"))
	msg := readMessage(t, conn)
	require.Equal(t, TypeReload, msg.Type)
	require.Equal(t, "/a/", msg.Path)
}

func TestHubReplaysPendingErrorsToNewConnections(t *testing.T) {
	hub := NewHub()
	hub.RecordError(core.Permalink("/broken/"), "boom")

	conn := dialHub(t, hub)
	readMessage(t, conn) // connected handshake

	msg := readMessage(t, conn)
	require.Equal(t, TypeError, msg.Type)
	require.Equal(t, "/broken/", msg.Path)
	require.Equal(t, "boom", msg.Error)
}

func TestHubClearErrorBroadcastsClearError(t *testing.T) {
	hub := NewHub()
	hub.RecordError(core.Permalink("/broken/"), "boom")

	conn := dialHub(t, hub)
	readMessage(t, conn) // connected
	readMessage(t, conn) // replayed error

	hub.ClearError(core.Permalink("/broken/"))
	msg := readMessage(t, conn)
	require.Equal(t, TypeClearError, msg.Type)
	require.Equal(t, "/broken/", msg.Path)
}
