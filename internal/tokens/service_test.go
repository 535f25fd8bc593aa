package tokens

import (
	"context"
	"strings"
	"testing"
	"time"

	"hirepath-backend/internal/email"
	"hirepath-backend/internal/users"
)

func newTestService(t *testing.T) (*Service, *users.MemoryRepo, *email.MemoryMailer) {
	t.Helper()
	usersRepo := users.NewMemoryRepo()
	mailer := email.NewMemoryMailer()
	svc := NewService(NewMemoryRepo(), usersRepo, mailer, "http://localhost:5173")
	return svc, usersRepo, mailer
}

func seedUser(t *testing.T, repo *users.MemoryRepo, emailAddr string) users.User {
	t.Helper()
	user := users.User{
		ID:        "user-" + emailAddr,
		Email:     emailAddr,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func issuedToken(t *testing.T, svc *Service, mailer *email.MemoryMailer) string {
	t.Helper()
	sent := mailer.Sent()
	if len(sent) == 0 {
		t.Fatal("expected a mail to be sent")
	}
	last := sent[len(sent)-1]
	idx := strings.Index(last.HTML, "token=")
	if idx < 0 {
		t.Fatalf("no token in mail body: %s", last.HTML)
	}
	rest := last.HTML[idx+len("token="):]
	end := strings.IndexAny(rest, `"&`)
	if end < 0 {
		t.Fatalf("malformed link in mail body: %s", last.HTML)
	}
	return rest[:end]
}

func TestConsumeResetTokenOnce(t *testing.T) {
	svc, usersRepo, mailer := newTestService(t)
	seedUser(t, usersRepo, "jane@example.com")

	if err := svc.RequestReset(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	token := issuedToken(t, svc, mailer)

	if err := svc.ConsumeReset(context.Background(), token, "new-hash"); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	user, err := usersRepo.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.PasswordHash != "new-hash" {
		t.Fatalf("password hash not updated: %q", user.PasswordHash)
	}

	// Second attempt with the same token must read as invalid or expired.
	if err := svc.ConsumeReset(context.Background(), token, "other-hash"); err != ErrNotFound {
		t.Fatalf("second consume: got %v, want ErrNotFound", err)
	}
}

func TestNewResetRequestInvalidatesPriorToken(t *testing.T) {
	svc, usersRepo, mailer := newTestService(t)
	seedUser(t, usersRepo, "jane@example.com")

	if err := svc.RequestReset(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("first RequestReset: %v", err)
	}
	first := issuedToken(t, svc, mailer)

	if err := svc.RequestReset(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("second RequestReset: %v", err)
	}
	second := issuedToken(t, svc, mailer)

	if first == second {
		t.Fatal("expected a fresh token on second request")
	}
	if err := svc.ConsumeReset(context.Background(), first, "h"); err != ErrNotFound {
		t.Fatalf("stale token consume: got %v, want ErrNotFound", err)
	}
	if err := svc.ConsumeReset(context.Background(), second, "h"); err != nil {
		t.Fatalf("fresh token consume: %v", err)
	}
}

func TestVerificationExpiry(t *testing.T) {
	svc, usersRepo, mailer := newTestService(t)
	seedUser(t, usersRepo, "jane@example.com")

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }

	if err := svc.RequestVerification(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("RequestVerification: %v", err)
	}
	token := issuedToken(t, svc, mailer)

	// Exactly at expiry the token is no longer valid.
	svc.now = func() time.Time { return base.Add(VerifyTTL) }
	if err := svc.ConsumeVerification(context.Background(), token); err != ErrNotFound {
		t.Fatalf("at expiry: got %v, want ErrNotFound", err)
	}

	// Just before expiry it still works.
	svc.now = func() time.Time { return base.Add(VerifyTTL - time.Second) }
	if err := svc.ConsumeVerification(context.Background(), token); err != nil {
		t.Fatalf("before expiry: %v", err)
	}
	user, err := usersRepo.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !user.Verified() {
		t.Fatal("expected user to be verified")
	}
}

func TestResetForUnknownEmailSendsNothing(t *testing.T) {
	svc, _, mailer := newTestService(t)
	if err := svc.RequestReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if len(mailer.Sent()) != 0 {
		t.Fatal("expected no mail for unknown account")
	}
}

func TestEffectFailureLeavesTokenIntact(t *testing.T) {
	svc, usersRepo, mailer := newTestService(t)
	seedUser(t, usersRepo, "jane@example.com")

	if err := svc.RequestReset(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	token := issuedToken(t, svc, mailer)

	// Blank hash fails validation before the token is deleted.
	if err := svc.ConsumeReset(context.Background(), token, ""); err == nil {
		t.Fatal("expected error for blank hash")
	}
	if err := svc.ConsumeReset(context.Background(), token, "real-hash"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}
