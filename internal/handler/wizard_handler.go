package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RG-1903/Urban-Drive-sub000/internal/application"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/auth"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/middleware"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/response"
)

// WizardHandler handles HTTP requests for the booking wizard.
type WizardHandler struct {
	service *application.WizardService
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(service *application.WizardService) *WizardHandler {
	return &WizardHandler{service: service}
}

// RegisterRoutes registers all wizard routes on the given router group.
func (h *WizardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	wizard := r.Group("/api/v1/wizard")
	wizard.Use(authMW, middleware.RequireRole(auth.RoleCustomer))
	{
		wizard.POST("", h.StartWizard)
		wizard.GET("", h.ListDrafts)
		wizard.GET("/:id", h.GetWizard)
		wizard.GET("/:id/quote", h.GetQuote)
		wizard.POST("/:id/advance", h.Advance)
		wizard.POST("/:id/retreat", h.Retreat)
		wizard.DELETE("/:id", h.Discard)
	}
}

// StartWizard handles POST /api/v1/wizard.
func (h *WizardHandler) StartWizard(c *gin.Context) {
	userID, token, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req application.StartWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.StartWizard(c.Request.Context(), userID, token, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListDrafts handles GET /api/v1/wizard.
func (h *WizardHandler) ListDrafts(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListUserDrafts(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetWizard handles GET /api/v1/wizard/:id.
func (h *WizardHandler) GetWizard(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	result, err := h.service.GetWizard(c.Request.Context(), userID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetQuote handles GET /api/v1/wizard/:id/quote.
func (h *WizardHandler) GetQuote(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), userID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, quote)
}

// Advance handles POST /api/v1/wizard/:id/advance.
func (h *WizardHandler) Advance(c *gin.Context) {
	userID, token, ok := callerIdentity(c)
	if !ok {
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	var update application.DraftUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Advance(c.Request.Context(), userID, token, draftID, update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Retreat handles POST /api/v1/wizard/:id/retreat.
func (h *WizardHandler) Retreat(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	result, err := h.service.Retreat(c.Request.Context(), userID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Discard handles DELETE /api/v1/wizard/:id.
func (h *WizardHandler) Discard(c *gin.Context) {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	if err := h.service.Discard(c.Request.Context(), userID, draftID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// callerIdentity extracts the authenticated user ID and bearer token.
func callerIdentity(c *gin.Context) (uuid.UUID, string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, "", false
	}
	token, ok := middleware.GetBearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, "", false
	}
	return userID, token, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
