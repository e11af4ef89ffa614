package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// dialSession spins up a one-shot echo-free WebSocket server and returns a
// domain.Session wrapping the server-side connection, plus the client-side
// connection a test can read from.
func dialSession(t *testing.T, class domain.PathClass) (*domain.Session, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConnCh := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConnCh <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-serverConnCh
	t.Cleanup(func() { serverConn.Close() })

	sess := domain.NewSession(domain.NewSessionID(), serverConn, class, domain.NewRootScope())
	return sess, clientConn
}

func TestBroadcastSender_SendBytesUnicast(t *testing.T) {
	registry := NewConnectionRegistry()
	sess, client := dialSession(t, domain.PathUniversal)
	registry.Insert(sess)

	sender := NewBroadcastSender(registry)
	err := sender.SendBytes(context.Background(), []byte(`{"hello":"world"}`), sess.ID)
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"hello":"world"}`, string(msg))
}

func TestBroadcastSender_SendBytesAbsentSessionIsNoop(t *testing.T) {
	registry := NewConnectionRegistry()
	sender := NewBroadcastSender(registry)

	err := sender.SendBytes(context.Background(), []byte("payload"), domain.NewSessionID())
	require.NoError(t, err)
}

func TestBroadcastSender_SendJSONExcludesAPIClass(t *testing.T) {
	registry := NewConnectionRegistry()
	universalSess, universalClient := dialSession(t, domain.PathUniversal)
	eventSess, eventClient := dialSession(t, domain.PathEvent)
	apiSess, apiClient := dialSession(t, domain.PathAPI)
	registry.Insert(universalSess)
	registry.Insert(eventSess)
	registry.Insert(apiSess)

	sender := NewBroadcastSender(registry)
	err := sender.SendJSON(context.Background(), map[string]string{"post_type": "message"}, nil)
	require.NoError(t, err)

	for _, c := range []*websocket.Conn{universalClient, eventClient} {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := c.ReadMessage()
		require.NoError(t, err)
		require.Contains(t, string(msg), "post_type")
	}

	apiClient.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = apiClient.ReadMessage()
	require.Error(t, err, "the api-class session must not receive a broadcast frame")
}

func TestBroadcastSender_SendJSONUnicast(t *testing.T) {
	registry := NewConnectionRegistry()
	sess, client := dialSession(t, domain.PathAPI)
	registry.Insert(sess)

	sender := NewBroadcastSender(registry)
	err := sender.SendJSON(context.Background(), map[string]string{"status": "ok"}, &sess.ID)
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "status")
}
