package tokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirepath-backend/internal/email"
	"hirepath-backend/internal/shared/telemetry"
	"hirepath-backend/internal/users"
)

// Service drives the verification and password-reset token lifecycle.
type Service struct {
	Repo   Repo
	Users  users.Repo
	Mailer email.Mailer
	UIBase string

	now func() time.Time
}

func NewService(repo Repo, usersRepo users.Repo, mailer email.Mailer, uiBase string) *Service {
	return &Service{
		Repo:   repo,
		Users:  usersRepo,
		Mailer: mailer,
		UIBase: strings.TrimRight(uiBase, "/"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RequestVerification creates a verification token and mails the link.
// Verification tokens are not deduplicated; expiry is checked at use time.
func (s *Service) RequestVerification(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return errors.New("email is required")
	}

	token := Token{
		ID:         uuid.NewString(),
		Identifier: emailAddr,
		Token:      randomToken(),
		Purpose:    PurposeVerify,
		ExpiresAt:  s.now().Add(VerifyTTL),
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.UIBase, url.QueryEscape(token.Token))
	return s.Mailer.Send(ctx, email.Message{
		To:      emailAddr,
		Subject: "Verify your email",
		HTML:    fmt.Sprintf(`<p>Welcome! Confirm your email by clicking <a href="%s">this link</a>. The link expires in 24 hours.</p>`, link),
	})
}

// RequestReset creates a reset token after deleting any outstanding one
// for the identifier. Only one live reset token is permitted per email.
func (s *Service) RequestReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return errors.New("email is required")
	}

	// Do not leak whether the account exists; a missing user gets the
	// same success response without a mail.
	if _, err := s.Users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			telemetry.Info("tokens.reset_unknown_email", map[string]any{"email": emailAddr})
			return nil
		}
		return err
	}

	if err := s.Repo.DeleteByIdentifier(ctx, emailAddr, PurposeReset); err != nil {
		return err
	}

	token := Token{
		ID:         uuid.NewString(),
		Identifier: emailAddr,
		Token:      randomToken(),
		Purpose:    PurposeReset,
		ExpiresAt:  s.now().Add(ResetTTL),
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.UIBase, url.QueryEscape(token.Token))
	return s.Mailer.Send(ctx, email.Message{
		To:      emailAddr,
		Subject: "Reset your password",
		HTML:    fmt.Sprintf(`<p>Reset your password by clicking <a href="%s">this link</a>. The link expires in 1 hour.</p>`, link),
	})
}

// ConsumeVerification marks the owning account verified and deletes the
// token. The sequence is find valid token, apply effect, delete token;
// an effect failure leaves the token intact for a retry.
func (s *Service) ConsumeVerification(ctx context.Context, value string) error {
	token, err := s.lookupValid(ctx, value, PurposeVerify)
	if err != nil {
		return err
	}

	user, err := s.Users.GetByEmail(ctx, token.Identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.Users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, token.ID)
}

// ConsumeReset sets a new password and deletes the token.
func (s *Service) ConsumeReset(ctx context.Context, value, newPasswordHash string) error {
	if strings.TrimSpace(newPasswordHash) == "" {
		return errors.New("password hash is required")
	}
	token, err := s.lookupValid(ctx, value, PurposeReset)
	if err != nil {
		return err
	}

	user, err := s.Users.GetByEmail(ctx, token.Identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.Users.UpdatePassword(ctx, user.ID, newPasswordHash); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, token.ID)
}

func (s *Service) lookupValid(ctx context.Context, value string, purpose Purpose) (Token, error) {
	if strings.TrimSpace(value) == "" {
		return Token{}, ErrNotFound
	}
	token, err := s.Repo.GetByValue(ctx, value, purpose)
	if err != nil {
		return Token{}, err
	}
	if token.Expired(s.now()) {
		// Expired reads as not-found; the caller sees one message.
		return Token{}, ErrNotFound
	}
	return token, nil
}

func randomToken() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uuid.NewString() + uuid.NewString()
	}
	return hex.EncodeToString(b[:])
}
