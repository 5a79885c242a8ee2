package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voxhire/voxhire-backend/internal/model"
)

// ResultRepository handles interview result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert stores a completed session's result. Keyed by session_id: a repeat
// completion leaves the stored row untouched and returns its identity, so the
// caller always hands back the first completion's record.
func (r *ResultRepository) Upsert(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (session_id, test_id, candidate_id, questions, answers, scores,
		                      total_score, total_questions, percentage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		 RETURNING id, completed_at`,
		res.SessionID, res.TestID, res.CandidateID, res.Questions, res.Answers, res.Scores,
		res.TotalScore, res.TotalQuestions, res.Percentage,
	).Scan(&res.ID, &res.CompletedAt)
}

// GetBySessionID retrieves the result stored for one interview session.
func (r *ResultRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, test_id, candidate_id, questions, answers, scores,
		        total_score, total_questions, percentage, completed_at
		 FROM results
		 WHERE session_id = $1`, sessionID,
	).Scan(&res.ID, &res.SessionID, &res.TestID, &res.CandidateID, &res.Questions,
		&res.Answers, &res.Scores, &res.TotalScore, &res.TotalQuestions,
		&res.Percentage, &res.CompletedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByTestPaginated retrieves completed results for one test with candidate
// identity, newest first.
func (r *ResultRepository) ListByTestPaginated(ctx context.Context, testID uuid.UUID, limit, offset int) ([]model.ResultDetail, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM results WHERE test_id = $1`, testID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.session_id, r.test_id, r.candidate_id, r.questions, r.answers, r.scores,
		        r.total_score, r.total_questions, r.percentage, r.completed_at,
		        u.full_name, u.email, t.title
		 FROM results r
		 JOIN users u ON r.candidate_id = u.id
		 JOIN tests t ON r.test_id = t.id
		 WHERE r.test_id = $1
		 ORDER BY r.completed_at DESC LIMIT $2 OFFSET $3`,
		testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var details []model.ResultDetail
	for rows.Next() {
		var d model.ResultDetail
		if err := rows.Scan(&d.ID, &d.SessionID, &d.TestID, &d.CandidateID, &d.Questions,
			&d.Answers, &d.Scores, &d.TotalScore, &d.TotalQuestions, &d.Percentage,
			&d.CompletedAt, &d.CandidateName, &d.CandidateEmail, &d.TestTitle); err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}

// ListByCandidate retrieves a candidate's own results with test titles, newest first.
func (r *ResultRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.ResultDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.session_id, r.test_id, r.candidate_id, r.questions, r.answers, r.scores,
		        r.total_score, r.total_questions, r.percentage, r.completed_at,
		        u.full_name, u.email, t.title
		 FROM results r
		 JOIN users u ON r.candidate_id = u.id
		 JOIN tests t ON r.test_id = t.id
		 WHERE r.candidate_id = $1
		 ORDER BY r.completed_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.ResultDetail
	for rows.Next() {
		var d model.ResultDetail
		if err := rows.Scan(&d.ID, &d.SessionID, &d.TestID, &d.CandidateID, &d.Questions,
			&d.Answers, &d.Scores, &d.TotalScore, &d.TotalQuestions, &d.Percentage,
			&d.CompletedAt, &d.CandidateName, &d.CandidateEmail, &d.TestTitle); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if details == nil {
		details = []model.ResultDetail{}
	}
	return details, rows.Err()
}
