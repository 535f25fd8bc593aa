package users_test

import (
	"context"
	"errors"
	"testing"

	"hirepath-backend/internal/rbac"
	"hirepath-backend/internal/shared/auth"
	"hirepath-backend/internal/users"
)

type recordingVerifier struct {
	emails []string
	err    error
}

func (v *recordingVerifier) RequestVerification(ctx context.Context, email string) error {
	if v.err != nil {
		return v.err
	}
	v.emails = append(v.emails, email)
	return nil
}

func validInput() users.RegisterInput {
	return users.RegisterInput{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct-horse",
		FullName: "Ada Lovelace",
	}
}

func TestRegisterCreatesCandidate(t *testing.T) {
	verifier := &recordingVerifier{}
	svc := users.NewService(users.NewMemoryRepo())
	svc.Verifier = verifier

	result, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Role != rbac.RoleCandidate {
		t.Fatalf("expected candidate role, got %s", result.User.Role)
	}
	if result.User.PasswordHash == "" || result.User.PasswordHash == "correct-horse" {
		t.Fatalf("expected hashed password")
	}
	if !result.VerificationSent {
		t.Fatalf("expected verification mail to be sent")
	}
	if len(verifier.emails) != 1 || verifier.emails[0] != "ada@example.com" {
		t.Fatalf("expected verification for ada@example.com, got %v", verifier.emails)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := users.NewService(users.NewMemoryRepo())

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	input := validInput()
	input.Username = "someone-else"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, users.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	list, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected single account after duplicate attempt, got %d", len(list))
	}
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	svc := users.NewService(users.NewMemoryRepo())

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	input := validInput()
	input.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, users.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for taken username, got %v", err)
	}
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	verifier := &recordingVerifier{err: errors.New("smtp down")}
	svc := users.NewService(users.NewMemoryRepo())
	svc.Verifier = verifier

	result, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.VerificationSent {
		t.Fatalf("expected VerificationSent=false when mail fails")
	}
}

func TestLoginIssuesRoleBearingToken(t *testing.T) {
	svc := users.NewService(users.NewMemoryRepo())
	registered, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ChangeRole(context.Background(), registered.User.ID, "recruiter"); err != nil {
		t.Fatalf("change role: %v", err)
	}

	user, token, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != rbac.RoleRecruiter {
		t.Fatalf("expected recruiter, got %s", user.Role)
	}

	claims, err := auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Sub != user.ID || claims.Role != "recruiter" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := users.NewService(users.NewMemoryRepo())
	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	svc := users.NewService(users.NewMemoryRepo())
	registered, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangeRole(context.Background(), registered.User.ID, "emperor"); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestUpsertFromAuthKeepsAssignedRole(t *testing.T) {
	svc := users.NewService(users.NewMemoryRepo())
	account := users.User{ID: "google:123", Email: "oauth@example.com", FullName: "OAuth User"}

	if err := svc.UpsertFromAuth(context.Background(), account); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.ChangeRole(context.Background(), "google:123", "admin"); err != nil {
		t.Fatalf("change role: %v", err)
	}
	if err := svc.UpsertFromAuth(context.Background(), account); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, err := svc.GetByID(context.Background(), "google:123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Role != rbac.RoleAdmin {
		t.Fatalf("expected role preserved across upserts, got %s", stored.Role)
	}
}
