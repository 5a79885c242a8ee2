package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voxhire/voxhire-backend/internal/middleware"
	"github.com/voxhire/voxhire-backend/internal/model"
	"github.com/voxhire/voxhire-backend/internal/response"
	"github.com/voxhire/voxhire-backend/internal/service"
	"github.com/voxhire/voxhire-backend/internal/validator"
)

// AdminHandler handles test authoring, candidate listing, assignment, and
// result review endpoints.
type AdminHandler struct {
	testService       *service.TestService
	userService       *service.UserService
	assignmentService *service.AssignmentService
	resultService     *service.ResultService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	testService *service.TestService,
	userService *service.UserService,
	assignmentService *service.AssignmentService,
	resultService *service.ResultService,
) *AdminHandler {
	return &AdminHandler{
		testService:       testService,
		userService:       userService,
		assignmentService: assignmentService,
		resultService:     resultService,
	}
}

// CreateTest godoc
// POST /api/v1/admin/tests
// Creates a test definition whose questions are generated from the prompt
// when a candidate starts an interview.
func (h *AdminHandler) CreateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test := &model.Test{
		Title:          req.Title,
		Description:    req.Description,
		Prompt:         req.Prompt,
		TotalQuestions: req.TotalQuestions,
		CreatedBy:      claims.UserID,
	}
	if err := h.testService.Create(c.Request.Context(), test); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// ListTests godoc
// GET /api/v1/admin/tests
// Lists tests with pagination, newest first.
func (h *AdminHandler) ListTests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	tests, pagination, err := h.testService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"tests": tests}, pagination)
}

// ListCandidates godoc
// GET /api/v1/admin/candidates
// Lists candidate accounts with pagination.
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	candidates, pagination, err := h.userService.ListCandidates(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"candidates": candidates}, pagination)
}

// AssignTest godoc
// POST /api/v1/admin/assignments
// Assigns a test to a candidate. The pair must be new.
func (h *AdminHandler) AssignTest(c *gin.Context) {
	var req model.AssignTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), req.TestID, req.CandidateID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTest)
		case errors.Is(err, service.ErrCandidateNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAssignmentExists):
			response.Fail(c, http.StatusConflict, response.ErrAssignmentExists)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// ListAssignments godoc
// GET /api/v1/admin/assignments
// Lists assignments with pagination, joined with test and candidate identity.
func (h *AdminHandler) ListAssignments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	assignments, pagination, err := h.assignmentService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"assignments": assignments}, pagination)
}

// TestResults godoc
// GET /api/v1/admin/tests/:id/results
// Lists completed results for one test, newest first.
func (h *AdminHandler) TestResults(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.resultService.ListByTest(c.Request.Context(), testID, page, perPage)
	if err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTest)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}
