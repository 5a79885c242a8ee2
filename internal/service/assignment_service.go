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

// Domain Errors
var (
	ErrTestNotFound      = errors.New("test not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrAssignmentExists  = errors.New("test already assigned to this candidate")
)

// AssignmentService handles test-to-candidate assignment logic.
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	testRepo       *repository.TestRepository
	userRepo       *repository.UserRepository
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	testRepo *repository.TestRepository,
	userRepo *repository.UserRepository,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		testRepo:       testRepo,
		userRepo:       userRepo,
	}
}

// Assign links a test to a candidate. Both sides must exist, the target user
// must actually be a candidate, and the (test, candidate) pair must be new.
func (s *AssignmentService) Assign(ctx context.Context, testID, candidateID uuid.UUID) (*model.Assignment, error) {
	if _, err := s.testRepo.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	if user.Role != model.RoleCandidate {
		return nil, ErrCandidateNotFound
	}

	assignment := &model.Assignment{
		TestID:      testID,
		CandidateID: candidateID,
		Status:      model.AssignmentStatusPending,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			return nil, ErrAssignmentExists
		}
		return nil, err
	}

	return assignment, nil
}

// List retrieves assignments with pagination, newest first.
func (s *AssignmentService) List(ctx context.Context, page, perPage int) ([]model.AssignmentDetail, *response.Pagination, error) {
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

	assignments, total, err := s.assignmentRepo.ListPaginated(ctx, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if assignments == nil {
		assignments = []model.AssignmentDetail{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return assignments, pagination, nil
}
