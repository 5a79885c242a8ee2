package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxhire/voxhire-backend/internal/response"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	return f.text, f.err
}

func newTranscribeRouter(tr transcriber, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewInterviewHandler(nil, tr, maxBytes)
	r := gin.New()
	r.POST("/transcribe", h.Transcribe)
	return r
}

func audioRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type transcribeEnvelope struct {
	Data struct {
		Transcription string `json:"transcription"`
	} `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func doTranscribe(t *testing.T, r *gin.Engine, req *http.Request) (int, transcribeEnvelope) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body transcribeEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestTranscribeSuccess(t *testing.T) {
	r := newTranscribeRouter(&fakeTranscriber{text: "I would reach for channels."}, 1<<20)

	code, body := doTranscribe(t, r, audioRequest(t, "audio", "answer.webm", []byte("audio-bytes")))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "I would reach for channels.", body.Data.Transcription)
}

func TestTranscribeEmptyTextFallsBack(t *testing.T) {
	r := newTranscribeRouter(&fakeTranscriber{text: ""}, 1<<20)

	code, body := doTranscribe(t, r, audioRequest(t, "audio", "silent.webm", []byte("audio-bytes")))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, transcriptionFallback, body.Data.Transcription)
}

func TestTranscribeMissingFile(t *testing.T) {
	r := newTranscribeRouter(&fakeTranscriber{}, 1<<20)

	code, body := doTranscribe(t, r, audioRequest(t, "wrong_field", "answer.webm", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrFileRequired, body.Error.Code)
}

func TestTranscribeFileTooLarge(t *testing.T) {
	r := newTranscribeRouter(&fakeTranscriber{}, 8)

	code, body := doTranscribe(t, r, audioRequest(t, "audio", "big.webm", bytes.Repeat([]byte("a"), 64)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrFileTooLarge, body.Error.Code)
}

func TestTranscribeServiceFailure(t *testing.T) {
	r := newTranscribeRouter(&fakeTranscriber{err: errors.New("whisper down")}, 1<<20)

	code, body := doTranscribe(t, r, audioRequest(t, "audio", "answer.webm", []byte("x")))
	assert.Equal(t, http.StatusBadGateway, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrTranscriptionFailure, body.Error.Code)
}
