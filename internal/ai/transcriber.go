package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/config"
)

// transcribeTimeout bounds one speech-to-text call. Whisper-style servers
// process roughly in real time, so a minute of audio needs headroom.
const transcribeTimeout = 90 * time.Second

// Transcriber sends recorded audio to an OpenAI-compatible speech-to-text
// endpoint (POST /v1/audio/transcriptions) and returns the recognized text.
type Transcriber struct {
	baseURL string
	model   string
	httpc   *http.Client
	log     zerolog.Logger
}

// NewTranscriber creates a Transcriber for the configured whisper server.
func NewTranscriber(cfg *config.Config, log zerolog.Logger) *Transcriber {
	return &Transcriber{
		baseURL: strings.TrimSuffix(cfg.WhisperURL, "/"),
		model:   cfg.WhisperModel,
		httpc:   &http.Client{Timeout: transcribeTimeout},
		log:     log.With().Str("component", "transcriber").Logger(),
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads one audio file and returns its transcript. The text may
// be empty when the service heard nothing usable; the caller decides how to
// surface that.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := t.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API error: status %d, body: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return strings.TrimSpace(tr.Text), nil
}
