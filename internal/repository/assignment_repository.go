package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voxhire/voxhire-backend/internal/model"
)

var ErrDuplicateAssignment = errors.New("test already assigned to this candidate")

// AssignmentRepository handles test assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts a new assignment in the pending state.
// The (test_id, candidate_id) pair is unique; a second assign is rejected.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignments (test_id, candidate_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (test_id, candidate_id) DO NOTHING
		 RETURNING id, assigned_at`,
		a.TestID, a.CandidateID, model.AssignmentStatusPending,
	).Scan(&a.ID, &a.AssignedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateAssignment
	}
	if err != nil {
		return err
	}
	a.Status = model.AssignmentStatusPending
	return nil
}

// GetByTestAndCandidate retrieves the assignment linking one candidate to one test.
func (r *AssignmentRepository) GetByTestAndCandidate(ctx context.Context, testID, candidateID uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, candidate_id, status, assigned_at
		 FROM assignments
		 WHERE test_id = $1 AND candidate_id = $2`, testID, candidateID,
	).Scan(&a.ID, &a.TestID, &a.CandidateID, &a.Status, &a.AssignedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateStatus moves an assignment along its lifecycle.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, testID, candidateID uuid.UUID, status model.AssignmentStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignments SET status = $1
		 WHERE test_id = $2 AND candidate_id = $3`,
		status, testID, candidateID)
	return err
}

// ListPaginated retrieves assignments joined with test and candidate identity,
// newest first.
func (r *AssignmentRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.AssignmentDetail, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.test_id, a.candidate_id, a.status, a.assigned_at,
		        t.title, t.total_questions, u.full_name, u.email
		 FROM assignments a
		 JOIN tests t ON a.test_id = t.id
		 JOIN users u ON a.candidate_id = u.id
		 ORDER BY a.assigned_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var details []model.AssignmentDetail
	for rows.Next() {
		var d model.AssignmentDetail
		if err := rows.Scan(&d.ID, &d.TestID, &d.CandidateID, &d.Status, &d.AssignedAt,
			&d.TestTitle, &d.TotalQuestions, &d.CandidateName, &d.CandidateEmail); err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}

// ListByCandidate retrieves a candidate's assignments with test info, newest first.
func (r *AssignmentRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.AssignmentDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.test_id, a.candidate_id, a.status, a.assigned_at,
		        t.title, t.total_questions, u.full_name, u.email
		 FROM assignments a
		 JOIN tests t ON a.test_id = t.id
		 JOIN users u ON a.candidate_id = u.id
		 WHERE a.candidate_id = $1
		 ORDER BY a.assigned_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.AssignmentDetail
	for rows.Next() {
		var d model.AssignmentDetail
		if err := rows.Scan(&d.ID, &d.TestID, &d.CandidateID, &d.Status, &d.AssignedAt,
			&d.TestTitle, &d.TotalQuestions, &d.CandidateName, &d.CandidateEmail); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if details == nil {
		details = []model.AssignmentDetail{}
	}
	return details, rows.Err()
}
