package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/model"
	"github.com/voxhire/voxhire-backend/internal/repository"
)

// dashboardStatsTTL bounds staleness of the cached stats block. The cache is
// also invalidated explicitly when a candidate completes an interview.
const dashboardStatsTTL = 5 * time.Minute

// DashboardStats summarizes a candidate's progress across assigned tests.
type DashboardStats struct {
	TotalTests     int     `json:"total_tests"`
	CompletedTests int     `json:"completed_tests"`
	PendingTests   int     `json:"pending_tests"`
	AverageScore   float64 `json:"average_score"`
}

// DashboardData consolidates everything the candidate dashboard shows.
type DashboardData struct {
	Assignments []model.AssignmentDetail `json:"assignments"`
	Results     []model.ResultDetail     `json:"results"`
	Stats       DashboardStats           `json:"stats"`
}

// DashboardService handles candidate dashboard business logic.
type DashboardService struct {
	assignmentRepo *repository.AssignmentRepository
	resultRepo     *repository.ResultRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	assignmentRepo *repository.AssignmentRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetCandidateDashboard returns the candidate's assignments, completed results,
// and progress stats. Lists are always fresh; the stats block is served from
// Redis when present.
func (s *DashboardService) GetCandidateDashboard(ctx context.Context, candidateID uuid.UUID) (*DashboardData, error) {
	assignments, err := s.assignmentRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	stats, err := s.getCachedStats(ctx, candidateID)
	if err != nil {
		computed := computeStats(assignments, results)
		stats = &computed
		s.cacheStats(ctx, candidateID, computed)
	}

	return &DashboardData{
		Assignments: assignments,
		Results:     results,
		Stats:       *stats,
	}, nil
}

func (s *DashboardService) getCachedStats(ctx context.Context, candidateID uuid.UUID) (*DashboardStats, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.DashboardStatsKey(candidateID.String())).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("Failed to read cached dashboard stats")
		}
		return nil, err
	}

	var stats DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DashboardService) cacheStats(ctx context.Context, candidateID uuid.UUID, stats DashboardStats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	key := config.CacheKey.DashboardStatsKey(candidateID.String())
	if err := s.rdb.Set(ctx, key, payload, dashboardStatsTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache dashboard stats")
	}
}

func computeStats(assignments []model.AssignmentDetail, results []model.ResultDetail) DashboardStats {
	stats := DashboardStats{TotalTests: len(assignments)}

	for _, a := range assignments {
		switch a.Status {
		case model.AssignmentStatusCompleted:
			stats.CompletedTests++
		case model.AssignmentStatusPending:
			stats.PendingTests++
		}
	}

	if len(results) > 0 {
		sum := 0.0
		for _, r := range results {
			sum += r.Percentage
		}
		avg := sum / float64(len(results))
		stats.AverageScore = math.Round(avg*100) / 100
	}

	return stats
}
