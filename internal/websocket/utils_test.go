package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestServer upgrades one connection, runs serve on the server side, and
// returns the client side plus the server write outcome.
func dialTestServer(t *testing.T, serve func(conn *websocket.Conn) error) (*websocket.Conn, chan error) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srvErr := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			srvErr <- err
			return
		}
		defer conn.Close()
		srvErr <- serve(conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, srvErr
}

func TestWriteTypedDeliversMonitorEvent(t *testing.T) {
	sessionID := uuid.New()
	client, srvErr := dialTestServer(t, func(conn *websocket.Conn) error {
		return WriteTyped(conn, MonitorEvent{
			Event:          EventSessionStarted,
			SessionID:      sessionID,
			TestTitle:      "Go Basics",
			TotalQuestions: 5,
			Timestamp:      time.Now().UTC(),
		})
	})

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event MonitorEvent
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, EventSessionStarted, event.Event)
	assert.Equal(t, sessionID, event.SessionID)
	assert.Equal(t, "Go Basics", event.TestTitle)
	assert.Equal(t, 5, event.TotalQuestions)
	require.NoError(t, <-srvErr)
}

func TestWriteErrorDeliversTypedFrame(t *testing.T) {
	client, srvErr := dialTestServer(t, func(conn *websocket.Conn) error {
		return WriteError(conn, "monitor stream unavailable")
	})

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame ErrorResponse
	require.NoError(t, client.ReadJSON(&frame))
	assert.Equal(t, EventError, frame.Event)
	assert.Equal(t, "monitor stream unavailable", frame.Error)
	require.NoError(t, <-srvErr)
}
