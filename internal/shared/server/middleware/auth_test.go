package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/rbac"
	"hirepath-backend/internal/shared/auth"
)

func signTestToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.SignJWT(auth.Claims{
		Sub:   "user-1",
		Email: "user@example.com",
		Role:  role,
		Exp:   time.Now().UTC().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return token
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.OPTIONS("/api/v1/resumes", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/api/v1/resumes", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthAllowsPublicJobBrowse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/api/v1/jobs", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthStoresIdentityAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	var gotUser string
	var gotRole rbac.Role
	router.GET("/api/v1/resumes", func(c *gin.Context) {
		gotUser, _ = UserIDFromContext(c)
		gotRole, _ = RoleFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "recruiter"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotUser != "user-1" {
		t.Fatalf("expected user-1, got %q", gotUser)
	}
	if gotRole != "recruiter" {
		t.Fatalf("expected recruiter role, got %q", gotRole)
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.POST("/api/v1/admin/users", RequirePermission(rbac.PermAdminsManage), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "admin"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on admins:manage, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken(t, "superadmin"))
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)

	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 for superadmin, got %d", resp2.Code)
	}
}

func TestContextHelpersReportPresence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromContext(c); ok {
		t.Fatal("expected no user ID without a session")
	}
	if _, ok := RoleFromContext(c); ok {
		t.Fatal("expected no role without a session")
	}

	c.Set("userId", "u1")
	c.Set("userRole", "admin")
	id, ok := UserIDFromContext(c)
	if !ok || id != "u1" {
		t.Fatalf("expected user u1, got %q ok=%v", id, ok)
	}
	role, ok := RoleFromContext(c)
	if !ok || role != rbac.RoleAdmin {
		t.Fatalf("expected admin role, got %q ok=%v", role, ok)
	}
}
