package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxhire/voxhire-backend/internal/config"
)

func newTestTranscriber(serverURL string) *Transcriber {
	cfg := &config.Config{
		WhisperURL:   serverURL,
		WhisperModel: "whisper-1",
	}
	return NewTranscriber(cfg, zerolog.Nop())
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "answer.webm", header.Filename)

		audio, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake audio bytes", string(audio))

		w.Write([]byte(`{"text":"  I would use a worker pool.  "}`))
	}))
	defer srv.Close()

	text, err := newTestTranscriber(srv.URL).Transcribe(
		context.Background(), "answer.webm", strings.NewReader("fake audio bytes"))
	require.NoError(t, err)
	assert.Equal(t, "I would use a worker pool.", text)
}

func TestTranscribeEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	text, err := newTestTranscriber(srv.URL).Transcribe(
		context.Background(), "silence.webm", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model crashed"))
	}))
	defer srv.Close()

	_, err := newTestTranscriber(srv.URL).Transcribe(
		context.Background(), "a.webm", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
