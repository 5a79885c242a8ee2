package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the immutable record of a completed interview session.
// Keyed by session ID so repeated completion calls never duplicate it.
type Result struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	TestID         uuid.UUID `json:"test_id"`
	CandidateID    uuid.UUID `json:"candidate_id"`
	Questions      []string  `json:"questions"`
	Answers        []string  `json:"answers"`
	Scores         []int     `json:"scores"`
	TotalScore     int       `json:"total_score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}

// ResultDetail joins candidate and test identity for admin listings.
type ResultDetail struct {
	Result
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	TestTitle      string `json:"test_title"`
}
