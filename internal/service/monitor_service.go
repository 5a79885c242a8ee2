package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/config"
	ws "github.com/voxhire/voxhire-backend/internal/websocket"
)

// MonitorService publishes interview lifecycle events to the Redis channel
// consumed by the admin live monitor. Publishing is fire-and-forget: a
// monitor outage must never fail an interview operation.
type MonitorService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(rdb *redis.Client, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		rdb: rdb,
		log: log.With().Str("component", "monitor_service").Logger(),
	}
}

// Publish sends one event to the monitor channel. Errors are logged, never returned.
func (s *MonitorService) Publish(ctx context.Context, event ws.MonitorEvent) {
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal monitor event")
		return
	}

	if err := s.rdb.Publish(ctx, config.CacheKey.InterviewMonitorChannel(), payload).Err(); err != nil {
		s.log.Warn().
			Err(err).
			Str("event", string(event.Event)).
			Msg("Failed to publish monitor event")
	}
}
