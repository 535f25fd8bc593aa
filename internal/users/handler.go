package users

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

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches public auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.GET("/me", h.me)
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Exact duplicate contract relied on by the registration form.
			c.JSON(http.StatusConflict, gin.H{"error": true, "message": "User already exist"})
			return
		}
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "characters") {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		return
	}

	message := "Registration successful. Check your email to verify your account."
	if !result.VerificationSent {
		message = "Registration successful, but the verification email could not be sent. Use resend to try again."
	}
	respond.Created(c, gin.H{
		"userId":  result.User.ID,
		"email":   result.User.Email,
		"message": message,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}

	respond.OK(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"fullName": user.FullName,
			"role":     user.Role,
			"verified": user.Verified(),
		},
	})
}

func (h *Handler) me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// OAuth-only identities may not be persisted yet.
			role, _ := middleware.RoleFromContext(c)
			respond.OK(c, gin.H{
				"userId": userID,
				"email":  middleware.UserEmailFromContext(c),
				"role":   role,
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		return
	}
	respond.OK(c, gin.H{
		"userId":   user.ID,
		"email":    user.Email,
		"username": user.Username,
		"fullName": user.FullName,
		"role":     user.Role,
		"verified": user.Verified(),
	})
}

// AdminHandler exposes account management for admins.
type AdminHandler struct {
	Svc *Service
}

func NewAdminHandler(svc *Service) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// RegisterRoutes attaches admin account routes. Listing needs users:view
// while role changes need admins:manage.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/users", middleware.RequirePermission(rbac.PermUsersView), h.list)
	rg.PUT("/admin/users/:id/role", middleware.RequirePermission(rbac.PermAdminsManage), h.changeRole)
}

func (h *AdminHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list users", nil)
		return
	}
	respond.OK(c, gin.H{"users": list})
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) changeRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	err := h.Svc.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		case strings.Contains(err.Error(), "unknown role"):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown role", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to change role", nil)
		}
		return
	}
	respond.OK(c, gin.H{"ok": true})
}
