package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/bootstrap"
	"hirepath-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func postJSON(t *testing.T, router http.Handler, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegisterLoginAndProfileFlow(t *testing.T) {
	app := buildTestApp(t)
	form := map[string]string{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "correct-horse",
		"fullName": "Ada Lovelace",
	}

	resp := postJSON(t, app.Router, "/api/v1/auth/register", form, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// Second attempt must surface the exact duplicate contract.
	dup := postJSON(t, app.Router, "/api/v1/auth/register", form, nil)
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", dup.Code)
	}
	var dupBody struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(dup.Body).Decode(&dupBody); err != nil {
		t.Fatalf("decode duplicate response: %v", err)
	}
	if !dupBody.Error || dupBody.Message != "User already exist" {
		t.Fatalf("unexpected duplicate body %+v", dupBody)
	}

	login := postJSON(t, app.Router, "/api/v1/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	}, nil)
	if login.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", login.Code, login.Body.String())
	}
	var session struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(login.Body).Decode(&session); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if session.Token == "" || session.User.Role != "candidate" {
		t.Fatalf("unexpected session %+v", session)
	}

	me := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	me.Header.Set("Authorization", "Bearer "+session.Token)
	meResp := httptest.NewRecorder()
	app.Router.ServeHTTP(meResp, me)
	if meResp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", meResp.Code)
	}
	var profile struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(meResp.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.UserID != session.User.ID || profile.Email != "ada@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestAdminRoutesRequirePermission(t *testing.T) {
	app := buildTestApp(t)

	form := map[string]string{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "correct-horse",
		"fullName": "Bob",
	}
	if resp := postJSON(t, app.Router, "/api/v1/auth/register", form, nil); resp.Code != http.StatusCreated {
		t.Fatalf("register: %d", resp.Code)
	}
	login := postJSON(t, app.Router, "/api/v1/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "correct-horse",
	}, nil)
	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(login.Body).Decode(&session); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	// Candidates cannot list accounts.
	denied := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	denied.Header.Set("Authorization", "Bearer "+session.Token)
	deniedResp := httptest.NewRecorder()
	app.Router.ServeHTTP(deniedResp, denied)
	if deniedResp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for candidate, got %d", deniedResp.Code)
	}

	// Promote and log in again; the admin token carries the new role.
	if err := app.UsersService.ChangeRole(context.Background(), session.User.ID, "admin"); err != nil {
		t.Fatalf("change role: %v", err)
	}
	relogin := postJSON(t, app.Router, "/api/v1/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "correct-horse",
	}, nil)
	if err := json.NewDecoder(relogin.Body).Decode(&session); err != nil {
		t.Fatalf("decode relogin: %v", err)
	}

	allowed := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	allowed.Header.Set("Authorization", "Bearer "+session.Token)
	allowedResp := httptest.NewRecorder()
	app.Router.ServeHTTP(allowedResp, allowed)
	if allowedResp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", allowedResp.Code, allowedResp.Body.String())
	}
}
