package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voxhire/voxhire-backend/internal/model"
)

// TestRepository handles interview test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test by its UUID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, prompt, total_questions, created_by, created_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Prompt, &t.TotalQuestions, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, description, prompt, total_questions, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		t.Title, t.Description, t.Prompt, t.TotalQuestions, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
}

// ListPaginated retrieves tests with the creator's name, newest first.
func (r *TestRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.TestWithCreator, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tests`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.description, t.prompt, t.total_questions, t.created_by, t.created_at,
		        u.full_name
		 FROM tests t
		 JOIN users u ON t.created_by = u.id
		 ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []model.TestWithCreator
	for rows.Next() {
		var t model.TestWithCreator
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Prompt, &t.TotalQuestions,
			&t.CreatedBy, &t.CreatedAt, &t.CreatorName); err != nil {
			return nil, 0, err
		}
		tests = append(tests, t)
	}
	return tests, total, rows.Err()
}
