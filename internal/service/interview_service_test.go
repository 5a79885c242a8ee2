package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/model"
)

type fakeQuestionSource struct {
	questions []string
	err       error
	calls     int
}

func (f *fakeQuestionSource) Generate(ctx context.Context, prompt string, count int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeEvaluator struct {
	verdicts []int
	err      error
	calls    int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, question, answer string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	verdict := 1
	if f.calls < len(f.verdicts) {
		verdict = f.verdicts[f.calls]
	}
	f.calls++
	return verdict, nil
}

type fakeTestStore struct {
	tests map[uuid.UUID]*model.Test
}

func (f *fakeTestStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	test, ok := f.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return test, nil
}

type fakeAssignmentStore struct {
	assignments map[string]*model.Assignment
}

func assignmentKey(testID, candidateID uuid.UUID) string {
	return testID.String() + ":" + candidateID.String()
}

func (f *fakeAssignmentStore) GetByTestAndCandidate(ctx context.Context, testID, candidateID uuid.UUID) (*model.Assignment, error) {
	a, ok := f.assignments[assignmentKey(testID, candidateID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (f *fakeAssignmentStore) UpdateStatus(ctx context.Context, testID, candidateID uuid.UUID, status model.AssignmentStatus) error {
	if a, ok := f.assignments[assignmentKey(testID, candidateID)]; ok {
		a.Status = status
	}
	return nil
}

// fakeResultStore mirrors the upsert contract: a conflicting write keeps the
// stored row's identity and completion time.
type fakeResultStore struct {
	bySession map[uuid.UUID]*model.Result
	upserts   int
}

func (f *fakeResultStore) Upsert(ctx context.Context, res *model.Result) error {
	f.upserts++
	if existing, ok := f.bySession[res.SessionID]; ok {
		res.ID = existing.ID
		res.CompletedAt = existing.CompletedAt
		return nil
	}
	res.ID = uuid.New()
	res.CompletedAt = time.Now()
	stored := *res
	f.bySession[res.SessionID] = &stored
	return nil
}

func (f *fakeResultStore) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Result, error) {
	res, ok := f.bySession[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	stored := *res
	return &stored, nil
}

type interviewFixture struct {
	svc         *InterviewService
	rdb         *redis.Client
	gen         *fakeQuestionSource
	eval        *fakeEvaluator
	assignments *fakeAssignmentStore
	results     *fakeResultStore
	candidateID uuid.UUID
	testID      uuid.UUID
}

func (fx *interviewFixture) assignmentStatus() model.AssignmentStatus {
	return fx.assignments.assignments[assignmentKey(fx.testID, fx.candidateID)].Status
}

func (fx *interviewFixture) queuedAnswerEvents(t *testing.T) int64 {
	t.Helper()
	n, err := fx.rdb.LLen(context.Background(), config.WorkerKey.PersistAnswersQueue).Result()
	require.NoError(t, err)
	return n
}

func newInterviewFixture(t *testing.T, questions []string) *interviewFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	candidateID := uuid.New()
	testID := uuid.New()

	tests := &fakeTestStore{tests: map[uuid.UUID]*model.Test{
		testID: {ID: testID, Title: "Go Basics", Prompt: "Golang backend developer", TotalQuestions: len(questions)},
	}}
	assignments := &fakeAssignmentStore{assignments: map[string]*model.Assignment{
		assignmentKey(testID, candidateID): {
			ID:          uuid.New(),
			TestID:      testID,
			CandidateID: candidateID,
			Status:      model.AssignmentStatusPending,
		},
	}}
	gen := &fakeQuestionSource{questions: questions}
	eval := &fakeEvaluator{}
	results := &fakeResultStore{bySession: map[uuid.UUID]*model.Result{}}

	svc := NewInterviewService(
		tests,
		assignments,
		results,
		gen,
		eval,
		NewMonitorService(rdb, zerolog.Nop()),
		rdb,
		time.Hour,
		zerolog.Nop(),
	)

	return &interviewFixture{
		svc:         svc,
		rdb:         rdb,
		gen:         gen,
		eval:        eval,
		assignments: assignments,
		results:     results,
		candidateID: candidateID,
		testID:      testID,
	}
}

func TestStartInterviewRequiresAssignment(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?"})

	_, err := fx.svc.StartInterview(context.Background(), uuid.New(), fx.testID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestStartInterviewResumesLiveSession(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?", "Q2?"})
	ctx := context.Background()

	first, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)
	assert.Equal(t, "Q1?", first.FirstQuestion)
	assert.Equal(t, 1, first.QuestionNumber)
	assert.False(t, first.Resumed)
	assert.Equal(t, model.AssignmentStatusInProgress, fx.assignmentStatus())

	again, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)
	assert.True(t, again.Resumed)
	assert.Equal(t, first.SessionID, again.SessionID)
	assert.Equal(t, 1, fx.gen.calls, "a live session must not regenerate questions")
}

func TestStartInterviewRecoversFromStalePointer(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?"})
	ctx := context.Background()

	first, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)

	// Session record expired on its own; only the active pointer survived.
	key := config.CacheKey.InterviewSessionKey(first.SessionID.String())
	require.NoError(t, fx.rdb.Del(ctx, key).Err())

	fresh, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)
	assert.False(t, fresh.Resumed)
	assert.NotEqual(t, first.SessionID, fresh.SessionID)
	assert.Equal(t, 2, fx.gen.calls)
}

func TestStartInterviewGenerationFailurePersistsNothing(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?"})
	fx.gen.err = errors.New("model overloaded")
	ctx := context.Background()

	_, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	assert.ErrorIs(t, err, ErrQuestionGeneration)

	keys, err := fx.rdb.Keys(ctx, "*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys, "no session keys may exist after a failed start")
	assert.Equal(t, model.AssignmentStatusPending, fx.assignmentStatus())
}

func TestInterviewFlowScoresAndCompletes(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?", "Q2?"})
	fx.eval.verdicts = []int{1, 0}
	ctx := context.Background()

	start, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)

	first, err := fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "a goroutine is a lightweight thread")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Score)
	assert.False(t, first.IsComplete)
	assert.Equal(t, "Q2?", first.NextQuestion)
	assert.Equal(t, 2, first.QuestionNumber)

	second, err := fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "no idea")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Score)
	assert.True(t, second.IsComplete)
	assert.Empty(t, second.NextQuestion)

	done, err := fx.svc.CompleteInterview(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, done.Result.TotalScore)
	assert.Equal(t, 2, done.Result.TotalQuestions)
	assert.Equal(t, 50.0, done.Result.Percentage)
	assert.Equal(t, []int{1, 0}, done.Result.Scores)
	assert.NotEmpty(t, done.ClosingMessage)
	assert.Equal(t, model.AssignmentStatusCompleted, fx.assignmentStatus())
	assert.EqualValues(t, 2, fx.queuedAnswerEvents(t))

	// The live keys are torn down at completion.
	gone, err := fx.rdb.Exists(ctx,
		config.CacheKey.InterviewSessionKey(start.SessionID.String()),
		config.CacheKey.ActiveSessionKey(fx.candidateID.String(), fx.testID.String()),
	).Result()
	require.NoError(t, err)
	assert.Zero(t, gone)
}

func TestSubmitAnswerPastLastQuestion(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?"})
	ctx := context.Background()

	start, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)
	_, err = fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "first answer")
	require.NoError(t, err)

	_, err = fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "one more")
	assert.ErrorIs(t, err, ErrSessionAlreadyComplete)
	assert.EqualValues(t, 1, fx.queuedAnswerEvents(t), "the rejected answer must not be recorded")

	state, err := fx.svc.GetSessionState(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
	assert.Equal(t, 1, state.QuestionNumber)
}

func TestCompleteInterviewBeforeLastQuestion(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?", "Q2?"})
	ctx := context.Background()

	start, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)
	_, err = fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "partial")
	require.NoError(t, err)

	_, err = fx.svc.CompleteInterview(ctx, fx.candidateID, start.SessionID)
	assert.ErrorIs(t, err, ErrIncompleteSession)
	assert.Zero(t, fx.results.upserts)

	// The session survives; the candidate keeps answering.
	state, err := fx.svc.GetSessionState(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)
	assert.False(t, state.IsComplete)
	assert.Equal(t, "Q2?", state.CurrentQuestion)
}

func TestSubmitAnswerEvaluationFailureKeepsSession(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?", "Q2?"})
	fx.eval.err = errors.New("upstream 503")
	ctx := context.Background()

	start, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)

	_, err = fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "my answer")
	assert.ErrorIs(t, err, ErrEvaluationFailure)
	assert.Zero(t, fx.queuedAnswerEvents(t))

	state, err := fx.svc.GetSessionState(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.QuestionNumber)
	assert.Equal(t, "Q1?", state.CurrentQuestion)

	// The same question succeeds once the evaluator recovers.
	fx.eval.err = nil
	fx.eval.verdicts = []int{1}
	resp, err := fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "my answer")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, "Q2?", resp.NextQuestion)
}

func TestCompleteInterviewTwiceReturnsStoredResult(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?"})
	fx.eval.verdicts = []int{1}
	ctx := context.Background()

	start, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)
	_, err = fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "answer")
	require.NoError(t, err)

	first, err := fx.svc.CompleteInterview(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)

	// The live keys are gone now; the repeat call answers from the store.
	repeat, err := fx.svc.CompleteInterview(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.Result.ID, repeat.Result.ID)
	assert.Equal(t, start.SessionID, repeat.Result.SessionID)
	assert.Equal(t, first.Result.TotalScore, repeat.Result.TotalScore)
	assert.Equal(t, first.Result.Percentage, repeat.Result.Percentage)
	assert.Equal(t, first.ClosingMessage, repeat.ClosingMessage)
	assert.Equal(t, 1, fx.results.upserts, "a repeat completion must not write again")
}

func TestSessionHiddenFromOtherCandidates(t *testing.T) {
	fx := newInterviewFixture(t, []string{"Q1?"})
	ctx := context.Background()

	start, err := fx.svc.StartInterview(ctx, fx.candidateID, fx.testID)
	require.NoError(t, err)

	_, err = fx.svc.SubmitAnswer(ctx, uuid.New(), start.SessionID, "intruder")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = fx.svc.SubmitAnswer(ctx, fx.candidateID, start.SessionID, "answer")
	require.NoError(t, err)
	_, err = fx.svc.CompleteInterview(ctx, fx.candidateID, start.SessionID)
	require.NoError(t, err)

	// The stored result is just as invisible to another candidate.
	_, err = fx.svc.CompleteInterview(ctx, uuid.New(), start.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClosingMessageTiers(t *testing.T) {
	cases := []struct {
		name       string
		score      int
		total      int
		percentage float64
		remark     string
	}{
		{"high tier", 9, 10, 90, "Excellent work! You demonstrated strong knowledge."},
		{"high tier boundary", 8, 10, 80, "Excellent work! You demonstrated strong knowledge."},
		{"middle tier", 3, 5, 60, "Good effort! Keep practicing to improve your skills."},
		{"low tier", 1, 5, 20, "Thank you for your time. Consider reviewing the topics covered."},
		{"zero score", 0, 5, 0, "Thank you for your time. Consider reviewing the topics covered."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := closingMessage(tc.score, tc.total, tc.percentage)
			assert.Contains(t, msg, tc.remark)
		})
	}
}

func TestClosingMessageFormat(t *testing.T) {
	msg := closingMessage(3, 5, 60)
	want := "Thank you for completing this test!\n\n" +
		"Your final score is 3 out of 5 (60%).\n\n" +
		"Good effort! Keep practicing to improve your skills.\n\n" +
		"Best of luck with your development journey!"
	assert.Equal(t, want, msg)
}

func TestResumeResponseMidSession(t *testing.T) {
	sess := &model.InterviewSession{
		ID:           uuid.New(),
		TestTitle:    "Go Fundamentals",
		Questions:    []string{"Q1?", "Q2?", "Q3?"},
		CurrentIndex: 1,
	}

	resp := resumeResponse(sess)
	assert.True(t, resp.Resumed)
	assert.Equal(t, sess.ID, resp.SessionID)
	assert.Equal(t, "Go Fundamentals", resp.TestTitle)
	assert.Equal(t, "Q2?", resp.FirstQuestion)
	assert.Equal(t, 2, resp.QuestionNumber)
	assert.Equal(t, 3, resp.TotalQuestions)
}

func TestResumeResponseAllAnswered(t *testing.T) {
	sess := &model.InterviewSession{
		ID:           uuid.New(),
		Questions:    []string{"Q1?", "Q2?"},
		CurrentIndex: 2,
	}

	resp := resumeResponse(sess)
	assert.True(t, resp.Resumed)
	assert.Empty(t, resp.FirstQuestion)
	assert.Equal(t, 2, resp.QuestionNumber)
	assert.Equal(t, 2, resp.TotalQuestions)
}
