package model

import (
	"time"

	"github.com/google/uuid"
)

// InterviewSession is the live state of one candidate's run through a test.
// It lives in Redis for the duration of the interview; a Result snapshot is
// persisted at completion. len(Answers) == len(Scores) == CurrentIndex and
// Score == sum(Scores) hold after every mutation.
type InterviewSession struct {
	ID           uuid.UUID `json:"id"`
	TestID       uuid.UUID `json:"test_id"`
	CandidateID  uuid.UUID `json:"candidate_id"`
	TestTitle    string    `json:"test_title"`
	Questions    []string  `json:"questions"`
	CurrentIndex int       `json:"current_index"`
	Score        int       `json:"score"`
	Answers      []string  `json:"answers"`
	Scores       []int     `json:"scores"`
	StartedAt    time.Time `json:"started_at"`
}

// StartInterviewRequest is the payload for starting an interview session.
type StartInterviewRequest struct {
	TestID uuid.UUID `json:"test_id" binding:"required"`
}

// StartInterviewResponse is returned when a session starts or resumes.
type StartInterviewResponse struct {
	SessionID      uuid.UUID `json:"session_id"`
	TestTitle      string    `json:"test_title"`
	FirstQuestion  string    `json:"first_question"`
	QuestionNumber int       `json:"question_number"`
	TotalQuestions int       `json:"total_questions"`
	Resumed        bool      `json:"resumed"`
}

// SubmitAnswerRequest is the payload for answering the current question.
type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required,min=1,max=10000"`
}

// SubmitAnswerResponse echoes the verdict and advances the candidate.
type SubmitAnswerResponse struct {
	Score          int    `json:"score"`
	IsComplete     bool   `json:"is_complete"`
	NextQuestion   string `json:"next_question,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`
}

// CompleteInterviewResponse closes out a finished session.
type CompleteInterviewResponse struct {
	Result         Result `json:"result"`
	ClosingMessage string `json:"closing_message"`
}

// SessionStateResponse is the read projection used by the frontend to
// restore an in-progress interview after a reload.
type SessionStateResponse struct {
	SessionID       uuid.UUID `json:"session_id"`
	TestID          uuid.UUID `json:"test_id"`
	TestTitle       string    `json:"test_title"`
	CurrentQuestion string    `json:"current_question,omitempty"`
	QuestionNumber  int       `json:"question_number"`
	TotalQuestions  int       `json:"total_questions"`
	IsComplete      bool      `json:"is_complete"`
}

// TranscriptionResponse carries the recognized text for a recorded answer.
type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
}
