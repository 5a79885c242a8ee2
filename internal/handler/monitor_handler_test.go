package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxhire/voxhire-backend/internal/config"
	ws "github.com/voxhire/voxhire-backend/internal/websocket"
)

func dialMonitorStream(t *testing.T, rdb *redis.Client) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	h := NewMonitorHandler(rdb, zerolog.Nop(), nil)
	r := gin.New()
	r.GET("/monitor", h.MonitorStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/monitor", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMonitorStreamForwardsPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	conn := dialMonitorStream(t, rdb)

	// Publish reports the receiver count, so wait until the stream's
	// subscription is live before asserting delivery.
	ctx := context.Background()
	payload := `{"event":"session_started","test_title":"Go Basics"}`
	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := rdb.Publish(ctx, config.CacheKey.InterviewMonitorChannel(), payload).Result()
		require.NoError(t, err)
		if n > 0 {
			break
		}
		require.True(t, time.Now().Before(deadline), "monitor stream never subscribed")
		time.Sleep(10 * time.Millisecond)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(msg))
}

func TestMonitorStreamReportsUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	conn := dialMonitorStream(t, rdb)

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var frame ws.ErrorResponse
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, ws.EventError, frame.Event)
	assert.Equal(t, "monitor stream unavailable", frame.Error)
}
