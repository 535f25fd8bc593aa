package tokens

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"hirepath-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the token service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches public token routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/verify-email", h.verifyEmail)
	rg.POST("/auth/resend-verification", h.resendVerification)
	rg.POST("/auth/forgot-password", h.forgotPassword)
	rg.POST("/auth/reset-password", h.resetPassword)
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *Handler) verifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.ConsumeVerification(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusBadRequest, "invalid_token", "invalid or expired token", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to verify email", nil)
		return
	}
	respond.OK(c, gin.H{"message": "Email verified."})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) resendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}

	if err := h.Svc.RequestVerification(c.Request.Context(), req.Email); err != nil {
		respond.Error(c, http.StatusBadGateway, "mail_failed", "could not send verification email, try again later", nil)
		return
	}
	respond.OK(c, gin.H{"message": "Verification email sent."})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}

	if err := h.Svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process request", nil)
		return
	}
	// Same response whether or not the account exists.
	respond.OK(c, gin.H{"message": "If the account exists, a reset link has been sent."})
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.NewPassword) < 8 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "password must be at least 8 characters", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process request", nil)
		return
	}

	if err := h.Svc.ConsumeReset(c.Request.Context(), req.Token, string(hash)); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusBadRequest, "invalid_token", "invalid or expired token", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset password", nil)
		return
	}
	respond.OK(c, gin.H{"message": "Password updated."})
}
