package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates assignment lifecycle states.
// Transitions are one-way: pending -> in_progress -> completed.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// Assignment links a candidate to a test.
type Assignment struct {
	ID          uuid.UUID        `json:"id"`
	TestID      uuid.UUID        `json:"test_id"`
	CandidateID uuid.UUID        `json:"candidate_id"`
	Status      AssignmentStatus `json:"status"`
	AssignedAt  time.Time        `json:"assigned_at"`
}

// AssignmentDetail joins test and candidate info for listings.
type AssignmentDetail struct {
	Assignment
	TestTitle      string `json:"test_title"`
	TotalQuestions int    `json:"total_questions"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
}

// AssignTestRequest is the payload for assigning a test to a candidate.
type AssignTestRequest struct {
	TestID      uuid.UUID `json:"test_id" binding:"required"`
	CandidateID uuid.UUID `json:"candidate_id" binding:"required"`
}
