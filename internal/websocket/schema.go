package websocket

import (
	"time"

	"github.com/google/uuid"
)

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSessionStarted   Event = "session_started"
	EventAnswerSubmitted  Event = "answer_submitted"
	EventSessionCompleted Event = "session_completed"
	EventError            Event = "error"
)

// MonitorEvent is published on the Redis monitor channel by the interview
// service and forwarded verbatim to every connected admin dashboard.
// Verdict is set for answer_submitted, Percentage for session_completed.
type MonitorEvent struct {
	Event          Event     `json:"event"`
	SessionID      uuid.UUID `json:"session_id"`
	TestID         uuid.UUID `json:"test_id"`
	TestTitle      string    `json:"test_title,omitempty"`
	CandidateID    uuid.UUID `json:"candidate_id"`
	QuestionNumber int       `json:"question_number,omitempty"`
	TotalQuestions int       `json:"total_questions,omitempty"`
	Verdict        *int      `json:"verdict,omitempty"`
	Percentage     *float64  `json:"percentage,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
