package applications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/jobs"
	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/server/middleware"
	"hirepath-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the application service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches candidate-facing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/apply", h.apply)
	rg.GET("/applications", h.listMine)
	rg.POST("/applications/bulk", h.startBulk)
	rg.GET("/applications/bulk/:id", h.getBulkRun)
}

// RegisterReviewRoutes attaches recruiter review routes, guarded by
// applications:review upstream.
func (h *Handler) RegisterReviewRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/:id/applications", h.listForJob)
	rg.PUT("/applications/:id/status", h.review)
}

type applyRequest struct {
	ResumeID  string `json:"resumeId"`
	CoverNote string `json:"coverNote"`
}

func (h *Handler) apply(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	app, err := h.Svc.ManualApply(c.Request.Context(), userID, c.Param("id"), req.ResumeID, req.CoverNote)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "already_applied", "you already applied to this job", nil)
		case errors.Is(err, ErrJobNotOpen):
			respond.Error(c, http.StatusConflict, "job_not_open", "job is not open for applications", nil)
		case errors.Is(err, jobs.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to apply", nil)
		}
		return
	}
	respond.Created(c, app)
}

func (h *Handler) listMine(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list applications", nil)
		return
	}
	if items == nil {
		items = []Application{}
	}
	respond.OK(c, gin.H{"applications": items})
}

func (h *Handler) startBulk(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	var in BulkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	requestID := middleware.RequestIDFromContext(c)
	run, err := h.Svc.StartBulk(c.Request.Context(), userID, requestID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start bulk apply", nil)
		}
		return
	}
	respond.Accepted(c, run)
}

func (h *Handler) getBulkRun(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	run, err := h.Svc.GetBulkRun(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "bulk run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load bulk run", nil)
		return
	}
	respond.OK(c, run)
}

func (h *Handler) listForJob(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Svc.ListForJob(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list applications", nil)
		return
	}
	if items == nil {
		items = []Application{}
	}
	respond.OK(c, gin.H{"applications": items})
}

func (h *Handler) review(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	app, err := h.Svc.Review(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update application", nil)
		}
		return
	}
	respond.OK(c, app)
}
