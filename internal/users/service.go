package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hirepath-backend/internal/rbac"
	"hirepath-backend/internal/shared/auth"
	"hirepath-backend/internal/shared/telemetry"
)

// ErrInvalidCredentials is returned when email/password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier requests verification emails for new accounts.
type Verifier interface {
	RequestVerification(ctx context.Context, email string) error
}

// Service contains account business logic.
type Service struct {
	Repo     Repo
	Verifier Verifier
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// RegisterResult reports the created user and whether the verification
// email went out.
type RegisterResult struct {
	User             User
	VerificationSent bool
}

// Register creates a candidate account. The email must not already be in
// use, either as an email or as another account's username.
func (s *Service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return RegisterResult{}, errors.New("valid email is required")
	}
	if len(input.Password) < 8 {
		return RegisterResult{}, errors.New("password must be at least 8 characters")
	}

	taken, err := s.Repo.ExistsByIdentifier(ctx, email)
	if err != nil {
		return RegisterResult{}, err
	}
	if taken {
		return RegisterResult{}, ErrDuplicate
	}
	if username := strings.TrimSpace(input.Username); username != "" {
		taken, err := s.Repo.ExistsByIdentifier(ctx, username)
		if err != nil {
			return RegisterResult{}, err
		}
		if taken {
			return RegisterResult{}, ErrDuplicate
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResult{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         rbac.RoleCandidate,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return RegisterResult{}, err
	}

	// A mail failure must not fail registration; the caller gets a
	// degraded message and the user can request a resend.
	sent := false
	if s.Verifier != nil {
		if err := s.Verifier.RequestVerification(ctx, email); err != nil {
			telemetry.Error("users.verification_mail_failed", map[string]any{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		} else {
			sent = true
		}
	}

	return RegisterResult{User: user, VerificationSent: sent}, nil
}

// Login checks credentials and issues a session JWT.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if user.PasswordHash == "" {
		return User{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := auth.SignJWT(auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.FullName,
		Role:  string(user.Role),
	})
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// UpsertFromAuth persists an OAuth identity to stabilize ownership of
// drafts and applications across sign-ins.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	if user.Role == "" {
		user.Role = rbac.RoleCandidate
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// List returns accounts for admin screens, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

// ChangeRole assigns a new role to an account.
func (s *Service) ChangeRole(ctx context.Context, userID, role string) error {
	if !rbac.ValidRole(role) {
		return errors.New("unknown role")
	}
	return s.Repo.UpdateRole(ctx, userID, string(rbac.ParseRole(role)))
}
