package sockets

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readMsg(t *testing.T, ws *websocket.Conn) Msg {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, body, err := ws.ReadMessage()
	require.NoError(t, err)
	var msg Msg
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg
}

func TestHub_Broadcast(t *testing.T) {
	hub := New()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast("snapshot", map[string]any{"name": "roof"}))

	for _, ws := range []*websocket.Conn{a, b} {
		msg := readMsg(t, ws)
		assert.Equal(t, "snapshot", msg.Type)
		assert.Equal(t, map[string]any{"name": "roof"}, msg.Payload)
	}
}

func TestHub_OnConnected(t *testing.T) {
	hub := New(OnConnected(func(c *Conn) {
		_ = c.Send([]byte(`{"type":"hello"}`))
	}))
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	ws := dial(t, srv)

	assert.Equal(t, "hello", readMsg(t, ws).Type)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := New(WithPingInterval(time.Second))
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	ws := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = ws.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_Close(t *testing.T) {
	hub := New()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ws := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.ClientCount())

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
}

func TestConn_SendAfterClose(t *testing.T) {
	c := &Conn{send: make(chan []byte, 1)}
	require.NoError(t, c.Send([]byte("a")))
	assert.Error(t, c.Send([]byte("b")), "buffer full")
	c.close()
	assert.ErrorIs(t, c.Send([]byte("c")), ErrClosed)
}
