package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/voxhire/voxhire-backend/internal/model"
	"github.com/voxhire/voxhire-backend/internal/repository"
	"github.com/voxhire/voxhire-backend/internal/response"
)

// TestService handles interview test business logic.
type TestService struct {
	testRepo *repository.TestRepository
}

// NewTestService creates a new TestService.
func NewTestService(testRepo *repository.TestRepository) *TestService {
	return &TestService{testRepo: testRepo}
}

// GetByID retrieves a test by its UUID.
func (s *TestService) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return s.testRepo.GetByID(ctx, id)
}

// Create inserts a new test definition.
func (s *TestService) Create(ctx context.Context, test *model.Test) error {
	return s.testRepo.Create(ctx, test)
}

// List retrieves tests with pagination, newest first.
func (s *TestService) List(ctx context.Context, page, perPage int) ([]model.TestWithCreator, *response.Pagination, error) {
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

	tests, total, err := s.testRepo.ListPaginated(ctx, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if tests == nil {
		tests = []model.TestWithCreator{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return tests, pagination, nil
}
