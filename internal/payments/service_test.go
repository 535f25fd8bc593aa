package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/wizard"
)

type countingGenerator struct {
	calls int
	err   error
}

func (g *countingGenerator) Generate(ctx context.Context, userID, resumeID string) (resumes.ArtifactInfo, error) {
	g.calls++
	return resumes.ArtifactInfo{URL: "/api/v1/resumes/" + resumeID + "/artifact"}, g.err
}

// scriptedCheckout returns a fixed sequence of statuses from SessionStatus.
type scriptedCheckout struct {
	*MemoryCheckout
	script []Status
	polls  int
}

func (c *scriptedCheckout) SessionStatus(ctx context.Context, sessionID string) (Status, error) {
	c.polls++
	if len(c.script) == 0 {
		return c.MemoryCheckout.SessionStatus(ctx, sessionID)
	}
	status := c.script[0]
	if len(c.script) > 1 {
		c.script = c.script[1:]
	}
	return status, nil
}

type paymentFixture struct {
	svc      *Service
	checkout *scriptedCheckout
	gen      *countingGenerator
	wizard   wizard.Store
	waits    []time.Duration
	resumeID string
}

func newFixture(t *testing.T, script ...Status) *paymentFixture {
	t.Helper()
	resumeRepo := resumes.NewMemoryRepo()
	draft := resumes.Draft{ID: "r1", UserID: "u1", Title: "Backend roles", Status: resumes.StatusDraft}
	if err := resumeRepo.Create(context.Background(), draft); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	f := &paymentFixture{
		checkout: &scriptedCheckout{MemoryCheckout: NewMemoryCheckout(), script: script},
		gen:      &countingGenerator{},
		wizard:   wizard.NewMemoryStore(),
		resumeID: draft.ID,
	}
	f.svc = &Service{
		Repo:      NewMemoryRepo(),
		Resumes:   resumeRepo,
		Wizard:    f.wizard,
		Checkout:  f.checkout,
		Generator: f.gen,
		PublicURL: "http://localhost:8080",
		sleep:     func(d time.Duration) { f.waits = append(f.waits, d) },
	}
	return f
}

func (f *paymentFixture) start(t *testing.T) Payment {
	t.Helper()
	payment, redirectURL, err := f.svc.StartCheckout(context.Background(), "u1", f.resumeID, "resume-download")
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if redirectURL == "" {
		t.Fatal("empty redirect URL")
	}
	return payment
}

func TestStartCheckoutCreatesPendingPayment(t *testing.T) {
	f := newFixture(t)
	payment := f.start(t)

	if payment.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", payment.Status)
	}
	if payment.CheckoutSessionID == "" {
		t.Error("session id not recorded")
	}
	status, err := f.svc.StatusFor(context.Background(), "u1", f.resumeID)
	if err != nil || status != StatusPending {
		t.Errorf("StatusFor = %s, %v", status, err)
	}
}

func TestStartCheckoutRejectsUnknownService(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.svc.StartCheckout(context.Background(), "u1", f.resumeID, "gold-plan"); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
}

func TestStartCheckoutRejectsForeignResume(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.svc.StartCheckout(context.Background(), "intruder", f.resumeID, "resume-download"); !errors.Is(err, resumes.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWebhookPaidUnlocksWizardAndGenerates(t *testing.T) {
	f := newFixture(t)
	payment := f.start(t)

	if err := f.svc.ConfirmWebhook(context.Background(), payment.CheckoutSessionID, StatusPaid); err != nil {
		t.Fatalf("ConfirmWebhook: %v", err)
	}

	status, _ := f.svc.StatusFor(context.Background(), "u1", f.resumeID)
	if status != StatusPaid {
		t.Errorf("status = %s, want PAID", status)
	}
	state, err := wizard.Load(context.Background(), f.wizard, "u1", f.resumeID)
	if err != nil {
		t.Fatalf("wizard load: %v", err)
	}
	if !state.PaymentCompleted {
		t.Error("PaymentCompleted not set")
	}
	if f.gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", f.gen.calls)
	}

	// Replayed webhooks are no-ops.
	if err := f.svc.ConfirmWebhook(context.Background(), payment.CheckoutSessionID, StatusPaid); err != nil {
		t.Fatalf("replayed ConfirmWebhook: %v", err)
	}
	if f.gen.calls != 1 {
		t.Errorf("generator calls after replay = %d, want 1", f.gen.calls)
	}
}

func TestWebhookUnknownSession(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.ConfirmWebhook(context.Background(), "sess_missing", StatusPaid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmAfterRedirectPollsWithBackoff(t *testing.T) {
	f := newFixture(t, StatusPending, StatusPending, StatusPaid)
	f.start(t)

	payment, err := f.svc.ConfirmAfterRedirect(context.Background(), "u1", f.resumeID)
	if err != nil {
		t.Fatalf("ConfirmAfterRedirect: %v", err)
	}
	if payment.Status != StatusPaid {
		t.Errorf("status = %s, want PAID", payment.Status)
	}
	if f.checkout.polls != 3 {
		t.Errorf("provider polls = %d, want 3", f.checkout.polls)
	}
	// Backoff doubles from the base instead of a single fixed wait.
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(f.waits) != len(want) {
		t.Fatalf("waits = %v, want %v", f.waits, want)
	}
	for i := range want {
		if f.waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, f.waits[i], want[i])
		}
	}
}

func TestConfirmAfterRedirectGivesUpAsPending(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.start(t)

	_, err := f.svc.ConfirmAfterRedirect(context.Background(), "u1", f.resumeID)
	if !errors.Is(err, ErrPaymentPending) {
		t.Fatalf("expected ErrPaymentPending, got %v", err)
	}
	if f.checkout.polls != confirmAttempts {
		t.Errorf("provider polls = %d, want %d", f.checkout.polls, confirmAttempts)
	}
	for _, wait := range f.waits {
		if wait > confirmMaxWait {
			t.Errorf("wait %v exceeds cap %v", wait, confirmMaxWait)
		}
	}
}

func TestConfirmAfterRedirectWithoutCheckout(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ConfirmAfterRedirect(context.Background(), "u1", f.resumeID)
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
}

func TestStatusForDefaultsToUnpaid(t *testing.T) {
	f := newFixture(t)
	status, err := f.svc.StatusFor(context.Background(), "u1", f.resumeID)
	if err != nil {
		t.Fatalf("StatusFor: %v", err)
	}
	if status != StatusUnpaid {
		t.Errorf("status = %s, want UNPAID", status)
	}
}
