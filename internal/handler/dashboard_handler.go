package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxhire/voxhire-backend/internal/middleware"
	"github.com/voxhire/voxhire-backend/internal/response"
	"github.com/voxhire/voxhire-backend/internal/service"
)

// DashboardHandler handles the candidate dashboard endpoint.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard godoc
// GET /api/v1/candidate/dashboard
// Returns the caller's assignments, completed results, and progress stats.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	data, err := h.dashboardService.GetCandidateDashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"dashboard": data})
}
