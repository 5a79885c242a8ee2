package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// textGenerator is the slice of GeminiClient the question source needs.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// QuestionSource turns a test's authoring prompt into an ordered list of
// interview questions.
type QuestionSource struct {
	gen textGenerator
	log zerolog.Logger
}

// NewQuestionSource creates a QuestionSource backed by the Gemini client.
func NewQuestionSource(client *GeminiClient, log zerolog.Logger) *QuestionSource {
	return &QuestionSource{
		gen: client,
		log: log.With().Str("component", "question_source").Logger(),
	}
}

const batchPrompt = `You are an experienced technical interviewer. Generate exactly %d specific, detailed interview questions based on the following prompt:

%s

IMPORTANT RULES:
1. Generate ACTUAL, SPECIFIC questions - not generic templates
2. Each question should be clear, detailed, and conversational
3. Questions should be suitable for a voice interview (easy to understand when spoken)
4. Each question should be 20-50 words long
5. Make questions practical and real-world focused
6. Do NOT use placeholders or generic formats

RESPOND ONLY with a JSON array of strings in this exact format:
["First specific question here?", "Second specific question here?", ...]

Do NOT include any other text, explanations, markdown, or code blocks - ONLY the JSON array.`

const singlePrompt = `Generate one specific interview question about: %s. Just give me the question text, nothing else.`

// Generate returns exactly count questions for the given prompt. It first
// asks for the whole batch as a JSON array; if the reply cannot be parsed or
// comes up short, it falls back to generating questions one at a time. Any
// remaining shortfall is an error — the caller must never start a session
// with fewer questions than the test demands.
func (s *QuestionSource) Generate(ctx context.Context, prompt string, count int) ([]string, error) {
	questions, err := s.generateBatch(ctx, prompt, count)
	if err == nil {
		return questions, nil
	}
	s.log.Warn().Err(err).Str("prompt", truncate(prompt, 80)).Msg("Batch generation failed, retrying one by one")

	return s.generateOneByOne(ctx, prompt, count)
}

func (s *QuestionSource) generateBatch(ctx context.Context, prompt string, count int) ([]string, error) {
	text, err := s.gen.GenerateText(ctx, fmt.Sprintf(batchPrompt, count, prompt))
	if err != nil {
		return nil, err
	}

	raw := extractArray(CleanJSON(text))

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("parse question array: %w", err)
	}

	if len(questions) < count {
		return nil, fmt.Errorf("expected %d questions, got %d", count, len(questions))
	}
	return questions[:count], nil
}

func (s *QuestionSource) generateOneByOne(ctx context.Context, prompt string, count int) ([]string, error) {
	questions := make([]string, 0, count)
	for i := 0; i < count; i++ {
		text, err := s.gen.GenerateText(ctx, fmt.Sprintf(singlePrompt, prompt))
		if err != nil {
			return nil, fmt.Errorf("generate question %d of %d: %w", i+1, count, err)
		}

		q := strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(text))
		if q == "" {
			return nil, fmt.Errorf("generate question %d of %d: empty reply", i+1, count)
		}
		if !strings.HasSuffix(q, "?") {
			q += "?"
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// extractArray trims any stray prose around the JSON array.
func extractArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
