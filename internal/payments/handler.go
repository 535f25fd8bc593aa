package payments

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/server/middleware"
	"hirepath-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the payment service.
type Handler struct {
	Svc           *Service
	WebhookSecret string
}

func NewHandler(svc *Service, webhookSecret string) *Handler {
	return &Handler{Svc: svc, WebhookSecret: webhookSecret}
}

// RegisterRoutes attaches checkout and confirmation routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/services", h.listServices)
	rg.POST("/resumes/:id/checkout", h.startCheckout)
	rg.POST("/resumes/:id/checkout/confirm", h.confirmAfterRedirect)
	rg.POST("/payments/webhook", h.webhook)
}

// RegisterAdminRoutes attaches the payments listing for back office use.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/payments", h.list)
}

func (h *Handler) listServices(c *gin.Context) {
	respond.OK(c, gin.H{"services": Catalog})
}

type checkoutRequest struct {
	ServiceID string `json:"serviceId"`
}

func (h *Handler) startCheckout(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	payment, redirectURL, err := h.Svc.StartCheckout(c.Request.Context(), userID, c.Param("id"), req.ServiceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownService):
			respond.Error(c, http.StatusBadRequest, "unknown_service", "unknown service id", nil)
		case errors.Is(err, ErrAlreadyPaid):
			respond.Error(c, http.StatusConflict, "already_paid", "resume is already paid", nil)
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrProvider):
			respond.Error(c, http.StatusBadGateway, "checkout_unavailable", "checkout provider unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start checkout", nil)
		}
		return
	}
	respond.Created(c, gin.H{
		"paymentId":   payment.ID,
		"status":      payment.Status,
		"redirectUrl": redirectURL,
	})
}

func (h *Handler) confirmAfterRedirect(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	payment, err := h.Svc.ConfirmAfterRedirect(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentPending):
			respond.Error(c, http.StatusConflict, "payment_pending", "payment confirmation is still pending", nil)
		case errors.Is(err, ErrPaymentRequired):
			respond.Error(c, http.StatusPaymentRequired, "payment_required", "no successful payment for this resume", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to confirm payment", nil)
		}
		return
	}
	respond.OK(c, gin.H{"paymentId": payment.ID, "status": payment.Status})
}

type webhookEvent struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

// webhook is exempt from JWT auth; the provider authenticates with a
// shared secret header instead.
func (h *Handler) webhook(c *gin.Context) {
	provided := c.GetHeader("X-Webhook-Secret")
	if h.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.WebhookSecret)) != 1 {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid webhook secret", nil)
		return
	}
	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid webhook payload", nil)
		return
	}
	if err := h.Svc.ConfirmWebhook(c.Request.Context(), event.SessionID, Status(event.Status)); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "unknown checkout session", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "webhook_error", err.Error(), nil)
		return
	}
	respond.OK(c, gin.H{"received": true})
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list payments", nil)
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, p := range items {
		out = append(out, gin.H{
			"id":          p.ID,
			"userId":      p.UserID,
			"resumeId":    p.ResumeID,
			"serviceId":   p.ServiceID,
			"status":      p.Status,
			"amountCents": p.AmountCents,
			"currency":    p.Currency,
			"createdAt":   p.CreatedAt,
		})
	}
	respond.OK(c, gin.H{"payments": out})
}
