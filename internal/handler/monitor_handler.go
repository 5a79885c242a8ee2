package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/config"
	ws "github.com/voxhire/voxhire-backend/internal/websocket"
)

const (
	monitorPingInterval  = 30 * time.Second
	monitorWriteDeadline = 10 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live interview events to admin dashboards.
type MonitorHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorStream godoc
// GET /api/v1/admin/monitor?token=...
// Upgrades to WebSocket, subscribes to the monitor channel, and forwards
// interview lifecycle events until the client disconnects.
func (h *MonitorHandler) MonitorStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.InterviewMonitorChannel())
	defer pubsub.Close()

	// Confirm the subscription before streaming so an unreachable Redis
	// surfaces as a typed error frame instead of a silently idle socket.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Msg("Monitor subscription failed")
		ws.WriteError(conn, "monitor stream unavailable")
		return
	}

	h.log.Info().Str("remote", c.ClientIP()).Msg("Monitor client connected")

	// Reader loop: consumes control frames and detects client close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(monitorPingInterval)
	defer ticker.Stop()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.log.Info().Str("remote", c.ClientIP()).Msg("Monitor client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				ws.WriteError(conn, "monitor stream closed")
				return
			}
			// Events arrive pre-encoded from the monitor service.
			conn.SetWriteDeadline(time.Now().Add(monitorWriteDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.log.Debug().Err(err).Msg("Monitor client write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
