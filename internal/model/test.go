package model

import (
	"time"

	"github.com/google/uuid"
)

// Test represents an interview test definition. Questions are generated from
// the prompt at session start, so the record stays immutable after creation.
type Test struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Prompt         string    `json:"prompt"`
	TotalQuestions int       `json:"total_questions"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// TestWithCreator joins the creator's name for admin listings.
type TestWithCreator struct {
	Test
	CreatorName string `json:"creator_name"`
}

// CreateTestRequest is the payload for creating a new test.
type CreateTestRequest struct {
	Title          string `json:"title" binding:"required,min=3,max=255"`
	Description    string `json:"description" binding:"omitempty,max=2000"`
	Prompt         string `json:"prompt" binding:"required,min=3,max=2000"`
	TotalQuestions int    `json:"total_questions" binding:"required,min=1,max=50"`
}
