package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/voxhire/voxhire-backend/internal/model"
	"github.com/voxhire/voxhire-backend/internal/repository"
	"github.com/voxhire/voxhire-backend/internal/response"
)

// ResultService handles completed interview result queries.
type ResultService struct {
	resultRepo *repository.ResultRepository
	testRepo   *repository.TestRepository
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository, testRepo *repository.TestRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo, testRepo: testRepo}
}

// ListByTest retrieves completed results for one test with pagination,
// newest first.
func (s *ResultService) ListByTest(ctx context.Context, testID uuid.UUID, page, perPage int) ([]model.ResultDetail, *response.Pagination, error) {
	if _, err := s.testRepo.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, fmt.Errorf("get test: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	results, total, err := s.resultRepo.ListByTestPaginated(ctx, testID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if results == nil {
		results = []model.ResultDetail{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return results, pagination, nil
}
