package resumes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/shared/server/middleware"
	"hirepath-backend/internal/shared/server/respond"
	"hirepath-backend/internal/wizard"
)

const maxStepPayload = 256 << 10 // 256KB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
	rg.PUT("/resumes/:id/steps/:step", h.saveStep)
	rg.POST("/resumes/:id/wizard/reset", h.resetWizard)
	rg.PUT("/resumes/:id/wizard/sidebar", h.setSidebar)
}

type createRequest struct {
	Title string `json:"title"`
}

func (h *Handler) create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	draft, err := h.Svc.CreateDraft(c.Request.Context(), userID, req.Title)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create resume", nil)
		return
	}
	c.Set("resumeId", draft.ID)
	respond.Created(c, draft)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	drafts, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	respond.OK(c, gin.H{"resumes": drafts})
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)

	view, err := h.Svc.Get(c.Request.Context(), userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	resumeID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, resumeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete resume", nil)
		return
	}
	respond.OK(c, gin.H{"ok": true})
}

func (h *Handler) saveStep(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	resumeID := c.Param("id")
	step := wizard.Step(c.Param("step"))
	generate := strings.EqualFold(c.Query("generate"), "true")
	c.Set("resumeId", resumeID)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxStepPayload)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read request body", nil)
		return
	}

	result, err := h.Svc.SaveStep(c.Request.Context(), userID, resumeID, step, json.RawMessage(payload), generate)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", "step validation failed", vErr.Issues)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrGenerateNotReady):
			respond.Error(c, http.StatusConflict, "generate_not_ready", err.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrGenerationFailed):
			respond.Error(c, http.StatusBadGateway, "generation_failed", "document generation failed, try again later", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save step", nil)
		}
		return
	}
	respond.OK(c, result)
}

func (h *Handler) resetWizard(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	resumeID := c.Param("id")

	state, err := h.Svc.ResetWizard(c.Request.Context(), userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset wizard", nil)
		return
	}
	respond.OK(c, gin.H{"wizard": state, "score": state.ComputeScore()})
}

type sidebarRequest struct {
	Visible bool `json:"visible"`
}

func (h *Handler) setSidebar(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	resumeID := c.Param("id")

	var req sidebarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.SetSidebar(c.Request.Context(), userID, resumeID, req.Visible); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save preference", nil)
		return
	}
	respond.OK(c, gin.H{"ok": true})
}
