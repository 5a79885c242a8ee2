package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerEvent is the audit record queued when a candidate submits an answer.
// The answer worker drains the queue and bulk-inserts these into Postgres.
// Best-effort: grading truth lives in the session and Result records.
type AnswerEvent struct {
	SessionID     uuid.UUID `json:"session_id"`
	TestID        uuid.UUID `json:"test_id"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	QuestionIndex int       `json:"question_index"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Verdict       int       `json:"verdict"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
