package jobs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/rbac"
	"hirepath-backend/internal/shared/server/middleware"
	"hirepath-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the posting service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches browse routes; list and detail are readable
// without a session.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.browse)
	rg.GET("/jobs/:id", h.get)
}

// RegisterWriteRoutes attaches posting management, guarded by
// jobs:write upstream.
func (h *Handler) RegisterWriteRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.PUT("/jobs/:id/details", h.updateDetails)
	rg.PUT("/jobs/:id/description", h.updateDescription)
	rg.PUT("/jobs/:id/requirements", h.updateRequirements)
	rg.POST("/jobs/:id/publish", h.publish)
	rg.POST("/jobs/:id/close", h.close)
}

// RegisterImportRoutes attaches the feed import, guarded by
// jobs:import upstream.
func (h *Handler) RegisterImportRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/import", h.importFeed)
}

func (h *Handler) browse(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := BrowseFilter{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Type:     c.Query("type"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("tags"); raw != "" {
		filter.Tags = trimAll(strings.Split(raw, ","))
	}
	items, err := h.Svc.Browse(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	if items == nil {
		items = []Job{}
	}
	respond.OK(c, gin.H{"jobs": items})
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !job.Published() && !h.canManage(c, job) {
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		return
	}
	respond.OK(c, job)
}

// canManage reports whether the caller may see or edit a non-published
// posting.
func (h *Handler) canManage(c *gin.Context, job Job) bool {
	role, ok := middleware.RoleFromContext(c)
	if !ok {
		return false
	}
	if !rbac.Allowed(role, rbac.PermJobsWrite) {
		return false
	}
	userID, _ := middleware.UserIDFromContext(c)
	return job.PostedBy == userID || role == rbac.RoleAdmin || role == rbac.RoleSuperAdmin
}

func (h *Handler) create(c *gin.Context) {
	var in DetailsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	userID, _ := middleware.UserIDFromContext(c)
	job, err := h.Svc.CreateDraft(c.Request.Context(), userID, in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	respond.Created(c, job)
}

func (h *Handler) updateDetails(c *gin.Context) {
	var in DetailsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.mutatePosting(c, func(jobID string) (Job, error) {
		return h.Svc.UpdateDetails(c.Request.Context(), jobID, in)
	})
}

func (h *Handler) updateDescription(c *gin.Context) {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.mutatePosting(c, func(jobID string) (Job, error) {
		return h.Svc.UpdateDescription(c.Request.Context(), jobID, body.Description)
	})
}

func (h *Handler) updateRequirements(c *gin.Context) {
	var body struct {
		Requirements []string `json:"requirements"`
		Tags         []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.mutatePosting(c, func(jobID string) (Job, error) {
		return h.Svc.UpdateRequirements(c.Request.Context(), jobID, body.Requirements, body.Tags)
	})
}

func (h *Handler) publish(c *gin.Context) {
	h.mutatePosting(c, func(jobID string) (Job, error) {
		return h.Svc.Publish(c.Request.Context(), jobID)
	})
}

func (h *Handler) close(c *gin.Context) {
	h.mutatePosting(c, func(jobID string) (Job, error) {
		return h.Svc.Close(c.Request.Context(), jobID)
	})
}

// mutatePosting loads the posting, checks ownership, and applies fn.
func (h *Handler) mutatePosting(c *gin.Context, fn func(jobID string) (Job, error)) {
	jobID := c.Param("id")
	existing, err := h.Svc.Get(c.Request.Context(), jobID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !h.canManage(c, existing) {
		respond.Error(c, http.StatusForbidden, "forbidden", "not your posting", nil)
		return
	}
	job, err := fn(jobID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) importFeed(c *gin.Context) {
	var body struct {
		Items []map[string]any `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(body.Items) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "items must not be empty", nil)
		return
	}
	userID, _ := middleware.UserIDFromContext(c)
	result, err := h.Svc.Import(c.Request.Context(), userID, body.Items)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import jobs", nil)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrIncomplete):
		respond.Error(c, http.StatusConflict, "posting_incomplete", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "job operation failed", nil)
	}
}
