package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voxhire/voxhire-backend/internal/middleware"
	"github.com/voxhire/voxhire-backend/internal/model"
	"github.com/voxhire/voxhire-backend/internal/response"
	"github.com/voxhire/voxhire-backend/internal/service"
	"github.com/voxhire/voxhire-backend/internal/validator"
)

// transcriptionFallback is returned with HTTP 200 when the transcript comes
// back empty, so the client can show it and let the user re-record.
const transcriptionFallback = "I couldn't hear your response clearly. Please try again."

// transcriber converts recorded audio into text.
type transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// InterviewHandler handles the candidate interview session endpoints.
type InterviewHandler struct {
	interviewService *service.InterviewService
	transcriber      transcriber
	maxUploadBytes   int64
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviewService *service.InterviewService, transcriber transcriber, maxUploadBytes int64) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
		transcriber:      transcriber,
		maxUploadBytes:   maxUploadBytes,
	}
}

// Start godoc
// POST /api/v1/candidate/interview/start
// Starts a session for an assigned test, or resumes the live one.
func (h *InterviewHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartInterviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.interviewService.StartInterview(c.Request.Context(), claims.UserID, req.TestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrAssignmentNotFound)
		case errors.Is(err, service.ErrInvalidTest):
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTest)
		case errors.Is(err, service.ErrQuestionGeneration):
			response.Fail(c, http.StatusBadGateway, response.ErrQuestionGeneration)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetState godoc
// GET /api/v1/candidate/interview/:session_id
// Returns the read projection used to restore the page after a reload.
func (h *InterviewHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.interviewService.GetSessionState(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/candidate/interview/:session_id/submit
// Evaluates the answer to the current question and advances the session.
func (h *InterviewHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.interviewService.SubmitAnswer(c.Request.Context(), claims.UserID, sessionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		case errors.Is(err, service.ErrSessionAlreadyComplete):
			response.Fail(c, http.StatusConflict, response.ErrSessionComplete)
		case errors.Is(err, service.ErrEvaluationFailure):
			response.Fail(c, http.StatusBadGateway, response.ErrEvaluationFailure)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Complete godoc
// POST /api/v1/candidate/interview/:session_id/complete
// Persists the Result snapshot for a fully answered session.
func (h *InterviewHandler) Complete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.interviewService.CompleteInterview(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		case errors.Is(err, service.ErrIncompleteSession):
			response.Fail(c, http.StatusConflict, response.ErrIncompleteSession)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Transcribe godoc
// POST /api/v1/candidate/interview/transcribe
// Forwards a recorded answer to the speech-to-text service.
func (h *InterviewHandler) Transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	text, err := h.transcriber.Transcribe(c.Request.Context(), header.Filename, file)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrTranscriptionFailure)
		return
	}

	// An empty transcript is not an error: the user gets a nudge to retry.
	if text == "" {
		text = transcriptionFallback
	}

	response.Success(c, http.StatusOK, model.TranscriptionResponse{Transcription: text})
}
