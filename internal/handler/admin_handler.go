package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/RG-1903/Urban-Drive-sub000/internal/application"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/auth"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/middleware"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/response"
)

// AdminWizardHandler handles admin HTTP requests for the wizard funnel.
type AdminWizardHandler struct {
	service *application.WizardService
}

// NewAdminWizardHandler creates a new AdminWizardHandler.
func NewAdminWizardHandler(service *application.WizardService) *AdminWizardHandler {
	return &AdminWizardHandler{service: service}
}

// RegisterRoutes registers admin wizard routes.
func (h *AdminWizardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/wizards", h.ListDrafts)
		admin.GET("/stats/wizards", h.DraftStats)
	}
}

// ListDrafts handles GET /api/v1/admin/wizards.
func (h *AdminWizardHandler) ListDrafts(c *gin.Context) {
	page, limit := parsePagination(c)

	drafts, total, err := h.service.ListAllDrafts(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, drafts, total, page, limit)
}

// DraftStats handles GET /api/v1/admin/stats/wizards.
func (h *AdminWizardHandler) DraftStats(c *gin.Context) {
	stats, err := h.service.GetDraftStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
