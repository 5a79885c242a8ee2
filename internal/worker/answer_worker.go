package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/model"
)

const (
	AnswerBatchSize    = 25
	AnswerBatchTimeout = 500 * time.Millisecond
	AnswerPollTimeout  = 2 * time.Second
)

// AnswerWorker consumes the answer audit queue and bulk-inserts events into
// PostgreSQL. The audit trail is best-effort: grading truth lives in the
// session and Result records.
type AnswerWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAnswerWorker creates a new AnswerWorker.
func NewAnswerWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AnswerWorker {
	return &AnswerWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "answer_worker").Logger(),
	}
}

// answerEventPayload carries the queued event plus a requeue counter so a
// failing batch is retried once and then dropped.
type answerEventPayload struct {
	model.AnswerEvent
	Attempts int `json:"attempts,omitempty"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start begins the worker loop. Call in a goroutine.
func (w *AnswerWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnswerWorker started")

	batch := make([]*answerEventPayload, 0, AnswerBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AnswerBatchSize || time.Since(lastFlush) >= AnswerBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("AnswerWorker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, AnswerPollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p answerEventPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with one-shot requeue
// ----------------------------------------------------------------

func (w *AnswerWorker) flushSafe(ctx context.Context, batch []*answerEventPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsertEvents(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("Bulk insert failed, requeueing batch")

		for _, p := range batch {
			p.Attempts++
			if p.Attempts > 1 {
				w.log.Error().
					Str("session_id", p.SessionID.String()).
					Int("question_index", p.QuestionIndex).
					Msg("Dropping answer event after retry")
				continue
			}
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw)
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL INSERT using UNNEST
// ----------------------------------------------------------------

func (w *AnswerWorker) bulkInsertEvents(ctx context.Context, batch []*answerEventPayload) error {
	n := len(batch)

	sessionIDs := make([]uuid.UUID, 0, n)
	testIDs := make([]uuid.UUID, 0, n)
	candidateIDs := make([]uuid.UUID, 0, n)
	indexes := make([]int, 0, n)
	questions := make([]string, 0, n)
	answers := make([]string, 0, n)
	verdicts := make([]int, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, p := range batch {
		sessionIDs = append(sessionIDs, p.SessionID)
		testIDs = append(testIDs, p.TestID)
		candidateIDs = append(candidateIDs, p.CandidateID)
		indexes = append(indexes, p.QuestionIndex)
		questions = append(questions, p.Question)
		answers = append(answers, p.Answer)
		verdicts = append(verdicts, p.Verdict)
		submittedAts = append(submittedAts, p.SubmittedAt)
	}

	query := `
		INSERT INTO answer_events
			(session_id, test_id, candidate_id, question_index, question, answer, verdict, submitted_at)
		SELECT
			u.session_id,
			u.test_id,
			u.candidate_id,
			u.question_index,
			u.question,
			u.answer,
			u.verdict,
			u.submitted_at
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::uuid[],
			$4::int[],
			$5::text[],
			$6::text[],
			$7::int[],
			$8::timestamptz[]
		) AS u (session_id, test_id, candidate_id, question_index, question, answer, verdict, submitted_at)
	`

	_, err := w.pool.Exec(ctx, query,
		sessionIDs, testIDs, candidateIDs, indexes, questions, answers, verdicts, submittedAts,
	)
	return err
}

// ----------------------------------------------------------------
// Shutdown drain
// ----------------------------------------------------------------

// drain empties the queue in batches before exit.
func (w *AnswerWorker) drain(ctx context.Context) {
	batch := make([]*answerEventPayload, 0, AnswerBatchSize)
	drained := 0

	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		var p answerEventPayload
		if err := json.Unmarshal([]byte(result), &p); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		batch = append(batch, &p)
		drained++

		if len(batch) >= AnswerBatchSize {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
		}
	}

	w.flushSafe(ctx, batch)

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining answer events")
	}
}
