package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/model"
	ws "github.com/voxhire/voxhire-backend/internal/websocket"
)

// Domain Errors
var (
	ErrInvalidTest            = errors.New("test not found or has no questions")
	ErrQuestionGeneration     = errors.New("question generation failed")
	ErrSessionNotFound        = errors.New("interview session not found")
	ErrSessionAlreadyComplete = errors.New("all questions already answered")
	ErrIncompleteSession      = errors.New("interview not completed yet")
	ErrEvaluationFailure      = errors.New("answer evaluation failed")
	ErrAssignmentNotFound     = errors.New("test is not assigned to this candidate")
)

// questionSource produces a fixed number of interview questions from a test prompt.
type questionSource interface {
	Generate(ctx context.Context, prompt string, count int) ([]string, error)
}

// answerEvaluator returns a binary verdict for an answer transcript.
type answerEvaluator interface {
	Evaluate(ctx context.Context, question, answer string) (int, error)
}

// testStore, assignmentStore, and resultStore are the narrow persistence
// surfaces the session state machine reads and writes. The Postgres
// repositories satisfy them.
type testStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
}

type assignmentStore interface {
	GetByTestAndCandidate(ctx context.Context, testID, candidateID uuid.UUID) (*model.Assignment, error)
	UpdateStatus(ctx context.Context, testID, candidateID uuid.UUID, status model.AssignmentStatus) error
}

type resultStore interface {
	Upsert(ctx context.Context, res *model.Result) error
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Result, error)
}

// InterviewService owns the interview session state machine. All session
// mutation happens here; handlers only hold read projections. The live
// session record is kept in Redis with a TTL refreshed on every write.
type InterviewService struct {
	testRepo       testStore
	assignmentRepo assignmentStore
	resultRepo     resultStore
	questions      questionSource
	evaluator      answerEvaluator
	monitor        *MonitorService
	rdb            *redis.Client
	sessionTTL     time.Duration
	log            zerolog.Logger
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(
	testRepo testStore,
	assignmentRepo assignmentStore,
	resultRepo resultStore,
	questions questionSource,
	evaluator answerEvaluator,
	monitor *MonitorService,
	rdb *redis.Client,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *InterviewService {
	return &InterviewService{
		testRepo:       testRepo,
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
		questions:      questions,
		evaluator:      evaluator,
		monitor:        monitor,
		rdb:            rdb,
		sessionTTL:     sessionTTL,
		log:            log.With().Str("component", "interview_service").Logger(),
	}
}

// StartInterview begins a session for an assigned test, or resumes the live
// one if the candidate already has a session for this test. Questions are
// generated up front; if generation fails no session is persisted.
func (s *InterviewService) StartInterview(ctx context.Context, candidateID, testID uuid.UUID) (*model.StartInterviewResponse, error) {
	if _, err := s.assignmentRepo.GetByTestAndCandidate(ctx, testID, candidateID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTest
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if test.TotalQuestions < 1 {
		return nil, ErrInvalidTest
	}

	// Resume an existing live session rather than regenerating questions.
	activeKey := config.CacheKey.ActiveSessionKey(candidateID.String(), testID.String())
	val, err := s.rdb.Get(ctx, activeKey).Result()
	if err == nil {
		if sessionID, parseErr := uuid.Parse(val); parseErr == nil {
			if sess, loadErr := s.loadSession(ctx, sessionID); loadErr == nil {
				return resumeResponse(sess), nil
			}
		}
		// Stale pointer; the session record expired on its own. Start fresh.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	questions, err := s.questions.Generate(ctx, test.Prompt, test.TotalQuestions)
	if err != nil {
		s.log.Error().Err(err).Str("test_id", testID.String()).Msg("Question generation failed")
		return nil, ErrQuestionGeneration
	}

	sess := &model.InterviewSession{
		ID:           uuid.New(),
		TestID:       testID,
		CandidateID:  candidateID,
		TestTitle:    test.Title,
		Questions:    questions,
		CurrentIndex: 0,
		Score:        0,
		Answers:      []string{},
		Scores:       []int{},
		StartedAt:    time.Now(),
	}

	if err := s.storeSession(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, testID, candidateID, model.AssignmentStatusInProgress); err != nil {
		// The session is already live; the status heals at completion.
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Failed to mark assignment in progress")
	}

	s.monitor.Publish(ctx, ws.MonitorEvent{
		Event:          ws.EventSessionStarted,
		SessionID:      sess.ID,
		TestID:         testID,
		TestTitle:      test.Title,
		CandidateID:    candidateID,
		TotalQuestions: test.TotalQuestions,
	})

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("test_id", testID.String()).
		Int("questions", len(questions)).
		Msg("Interview session started")

	return &model.StartInterviewResponse{
		SessionID:      sess.ID,
		TestTitle:      test.Title,
		FirstQuestion:  questions[0],
		QuestionNumber: 1,
		TotalQuestions: test.TotalQuestions,
	}, nil
}

// SubmitAnswer evaluates the answer to the current question and advances the
// session. The append of answer and verdict, the score increment, and the
// index increment happen as one mutation followed by one store write.
func (s *InterviewService) SubmitAnswer(ctx context.Context, candidateID, sessionID uuid.UUID, answer string) (*model.SubmitAnswerResponse, error) {
	sess, err := s.loadOwnedSession(ctx, sessionID, candidateID)
	if err != nil {
		return nil, err
	}

	if sess.CurrentIndex >= len(sess.Questions) {
		return nil, ErrSessionAlreadyComplete
	}

	question := sess.Questions[sess.CurrentIndex]

	verdict, err := s.evaluator.Evaluate(ctx, question, answer)
	if err != nil {
		// Session untouched: the candidate retries the same question.
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Answer evaluation failed")
		return nil, ErrEvaluationFailure
	}

	sess.Answers = append(sess.Answers, answer)
	sess.Scores = append(sess.Scores, verdict)
	sess.Score += verdict
	sess.CurrentIndex++

	if err := s.storeSession(ctx, sess); err != nil {
		return nil, err
	}

	s.queueAnswerEvent(ctx, sess, question, answer, verdict)

	v := verdict
	s.monitor.Publish(ctx, ws.MonitorEvent{
		Event:          ws.EventAnswerSubmitted,
		SessionID:      sess.ID,
		TestID:         sess.TestID,
		TestTitle:      sess.TestTitle,
		CandidateID:    sess.CandidateID,
		QuestionNumber: sess.CurrentIndex,
		TotalQuestions: len(sess.Questions),
		Verdict:        &v,
	})

	resp := &model.SubmitAnswerResponse{
		Score:      verdict,
		IsComplete: sess.CurrentIndex >= len(sess.Questions),
	}
	if !resp.IsComplete {
		resp.NextQuestion = sess.Questions[sess.CurrentIndex]
		resp.QuestionNumber = sess.CurrentIndex + 1
	}
	return resp, nil
}

// CompleteInterview persists the Result snapshot for a fully answered session
// and tears down the live state. A repeat call finds the session keys gone
// and is answered from the stored Result instead, so completion stays
// idempotent end to end.
func (s *InterviewService) CompleteInterview(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.CompleteInterviewResponse, error) {
	sess, err := s.loadOwnedSession(ctx, sessionID, candidateID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return s.storedCompletion(ctx, candidateID, sessionID)
		}
		return nil, err
	}

	total := len(sess.Questions)
	if sess.CurrentIndex < total {
		return nil, ErrIncompleteSession
	}

	percentage := float64(0)
	if total > 0 {
		percentage = float64(sess.Score) / float64(total) * 100
	}

	result := &model.Result{
		SessionID:      sess.ID,
		TestID:         sess.TestID,
		CandidateID:    sess.CandidateID,
		Questions:      sess.Questions,
		Answers:        sess.Answers,
		Scores:         sess.Scores,
		TotalScore:     sess.Score,
		TotalQuestions: total,
		Percentage:     percentage,
	}
	if err := s.resultRepo.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, sess.TestID, candidateID, model.AssignmentStatusCompleted); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to mark assignment completed")
	}

	s.clearSession(ctx, sess)

	p := percentage
	s.monitor.Publish(ctx, ws.MonitorEvent{
		Event:          ws.EventSessionCompleted,
		SessionID:      sess.ID,
		TestID:         sess.TestID,
		TestTitle:      sess.TestTitle,
		CandidateID:    sess.CandidateID,
		TotalQuestions: total,
		Percentage:     &p,
	})

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Int("score", sess.Score).
		Float64("percentage", percentage).
		Msg("Interview session completed")

	return &model.CompleteInterviewResponse{
		Result:         *result,
		ClosingMessage: closingMessage(sess.Score, total, percentage),
	}, nil
}

// storedCompletion answers a complete call whose live session is gone. After
// a successful completion the Redis keys are deleted, so the stored Result is
// the only record left. An unknown or foreign session still reads as not found.
func (s *InterviewService) storedCompletion(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.CompleteInterviewResponse, error) {
	result, err := s.resultRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	if result.CandidateID != candidateID {
		return nil, ErrSessionNotFound
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Msg("Repeated completion answered from stored result")

	return &model.CompleteInterviewResponse{
		Result:         *result,
		ClosingMessage: closingMessage(result.TotalScore, result.TotalQuestions, result.Percentage),
	}, nil
}

// GetSessionState returns the read projection used to restore the interview
// page after a reload. Running verdicts are not exposed here.
func (s *InterviewService) GetSessionState(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.SessionStateResponse, error) {
	sess, err := s.loadOwnedSession(ctx, sessionID, candidateID)
	if err != nil {
		return nil, err
	}

	total := len(sess.Questions)
	resp := &model.SessionStateResponse{
		SessionID:      sess.ID,
		TestID:         sess.TestID,
		TestTitle:      sess.TestTitle,
		TotalQuestions: total,
		IsComplete:     sess.CurrentIndex >= total,
	}
	if resp.IsComplete {
		resp.QuestionNumber = total
	} else {
		resp.CurrentQuestion = sess.Questions[sess.CurrentIndex]
		resp.QuestionNumber = sess.CurrentIndex + 1
	}
	return resp, nil
}

// loadOwnedSession fetches a session and verifies the caller owns it.
// A session belonging to someone else reads as not found.
func (s *InterviewService) loadOwnedSession(ctx context.Context, sessionID, candidateID uuid.UUID) (*model.InterviewSession, error) {
	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.CandidateID != candidateID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *InterviewService) loadSession(ctx context.Context, sessionID uuid.UUID) (*model.InterviewSession, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.InterviewSessionKey(sessionID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess model.InterviewSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// storeSession writes the session record and the active pointer atomically
// via pipeline, refreshing both TTLs.
func (s *InterviewService) storeSession(ctx context.Context, sess *model.InterviewSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	sessionKey := config.CacheKey.InterviewSessionKey(sess.ID.String())
	activeKey := config.CacheKey.ActiveSessionKey(sess.CandidateID.String(), sess.TestID.String())

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, sessionKey, payload, s.sessionTTL)
	pipe.Set(ctx, activeKey, sess.ID.String(), s.sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// clearSession removes the live session and active pointer and invalidates
// the candidate's cached dashboard stats.
func (s *InterviewService) clearSession(ctx context.Context, sess *model.InterviewSession) {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.InterviewSessionKey(sess.ID.String()))
	pipe.Del(ctx, config.CacheKey.ActiveSessionKey(sess.CandidateID.String(), sess.TestID.String()))
	pipe.Del(ctx, config.CacheKey.DashboardStatsKey(sess.CandidateID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to clear session keys")
	}
}

// queueAnswerEvent pushes an audit record for the answer worker. Best-effort.
func (s *InterviewService) queueAnswerEvent(ctx context.Context, sess *model.InterviewSession, question, answer string, verdict int) {
	event := model.AnswerEvent{
		SessionID:     sess.ID,
		TestID:        sess.TestID,
		CandidateID:   sess.CandidateID,
		QuestionIndex: sess.CurrentIndex - 1,
		Question:      question,
		Answer:        answer,
		Verdict:       verdict,
		SubmittedAt:   time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal answer event")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to queue answer event")
	}
}

func resumeResponse(sess *model.InterviewSession) *model.StartInterviewResponse {
	resp := &model.StartInterviewResponse{
		SessionID:      sess.ID,
		TestTitle:      sess.TestTitle,
		TotalQuestions: len(sess.Questions),
		Resumed:        true,
	}
	if sess.CurrentIndex < len(sess.Questions) {
		resp.FirstQuestion = sess.Questions[sess.CurrentIndex]
		resp.QuestionNumber = sess.CurrentIndex + 1
	} else {
		// All questions answered; the client should call complete.
		resp.QuestionNumber = len(sess.Questions)
	}
	return resp
}

// closingMessage builds the final note shown after an interview, with the
// middle remark tiered by percentage.
func closingMessage(score, total int, percentage float64) string {
	var remark string
	switch {
	case percentage >= 80:
		remark = "Excellent work! You demonstrated strong knowledge."
	case percentage >= 60:
		remark = "Good effort! Keep practicing to improve your skills."
	default:
		remark = "Thank you for your time. Consider reviewing the topics covered."
	}

	return fmt.Sprintf(
		"Thank you for completing this test!\n\nYour final score is %d out of %d (%.0f%%).\n\n%s\n\nBest of luck with your development journey!",
		score, total, percentage, remark,
	)
}
