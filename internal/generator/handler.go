package generator

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/payments"
	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/server/middleware"
	"hirepath-backend/internal/shared/server/respond"
)

// Handler serves generated artifacts. Downloads are gated on payment.
type Handler struct {
	Svc      *Service
	Payments *payments.Service
}

func NewHandler(svc *Service, pay *payments.Service) *Handler {
	return &Handler{Svc: svc, Payments: pay}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/artifact", h.download)
	rg.POST("/resumes/:id/generate", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	artifact, err := h.Svc.Generate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, resumes.ErrGenerateNotReady):
			respond.Error(c, http.StatusConflict, "generate_not_ready", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "generation_failed", "document generation failed, try again later", nil)
		}
		return
	}
	respond.OK(c, artifact)
}

func (h *Handler) download(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	resumeID := c.Param("id")

	status, err := h.Payments.StatusFor(c.Request.Context(), userID, resumeID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check payment", nil)
		return
	}
	switch status {
	case payments.StatusPaid:
	case payments.StatusPending:
		respond.Error(c, http.StatusConflict, "payment_pending", "payment confirmation is still pending", nil)
		return
	default:
		respond.Error(c, http.StatusPaymentRequired, "payment_required", "purchase is required before download", nil)
		return
	}

	body, err := h.Svc.OpenArtifact(c.Request.Context(), userID, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no generated document for this resume", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		return
	}
	defer body.Close()

	c.Header("Content-Type", docxMime)
	c.Header("Content-Disposition", `attachment; filename="resume.docx"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are already out; nothing to do but drop the conn.
		_ = c.Error(err)
	}
}
