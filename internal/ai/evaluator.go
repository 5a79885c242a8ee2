package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Evaluator grades a transcribed answer with a binary verdict.
type Evaluator struct {
	gen textGenerator
	log zerolog.Logger
}

// NewEvaluator creates an Evaluator backed by the Gemini client.
func NewEvaluator(client *GeminiClient, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		gen: client,
		log: log.With().Str("component", "answer_evaluator").Logger(),
	}
}

const evaluatePrompt = `You are an interviewer evaluating a candidate's answer.

Question: %s

Candidate's Answer: %s

Evaluate this answer and determine if it demonstrates sufficient understanding.
Consider:
- Technical accuracy
- Relevance to the question
- Depth of understanding
- Practical knowledge

Respond with ONLY "CORRECT" if the answer is acceptable (award 1 point), or "INCORRECT" if not (award 0 points).
Be reasonably lenient - if the answer shows basic understanding, mark it as CORRECT.`

// Evaluate returns 1 when the answer is judged acceptable and 0 otherwise.
// Transport or API failures are returned as errors, never as a zero score:
// the caller decides what an unscored answer means.
func (e *Evaluator) Evaluate(ctx context.Context, question, answer string) (int, error) {
	text, err := e.gen.GenerateText(ctx, fmt.Sprintf(evaluatePrompt, question, answer))
	if err != nil {
		return 0, err
	}

	verdict := strings.ToUpper(strings.TrimSpace(text))
	e.log.Debug().Str("verdict", truncate(verdict, 40)).Msg("Evaluation response")

	// "INCORRECT" contains "CORRECT", so the negative check comes first.
	if strings.Contains(verdict, "CORRECT") && !strings.Contains(verdict, "INCORRECT") {
		return 1, nil
	}
	return 0, nil
}
