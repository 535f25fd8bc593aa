package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/metrics"
	"hirepath-backend/internal/shared/telemetry"
	"hirepath-backend/internal/wizard"
)

var (
	// ErrUnknownService is returned for a serviceID outside the catalog.
	ErrUnknownService = errors.New("unknown service")
	// ErrAlreadyPaid is returned when checkout is started for a resume
	// that is already paid.
	ErrAlreadyPaid = errors.New("resume already paid")
	// ErrPaymentPending is returned while the provider has not yet
	// confirmed the session.
	ErrPaymentPending = errors.New("payment pending")
	// ErrPaymentRequired is returned when no successful payment exists.
	ErrPaymentRequired = errors.New("payment required")
)

// ServiceOffering is one purchasable item.
type ServiceOffering struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

// Catalog lists the purchasable services.
var Catalog = []ServiceOffering{
	{ID: "resume-download", Name: "Resume download", AmountCents: 990, Currency: "usd"},
	{ID: "resume-premium", Name: "Resume download + AI bulk apply", AmountCents: 2490, Currency: "usd"},
}

func offeringByID(id string) (ServiceOffering, bool) {
	for _, o := range Catalog {
		if o.ID == id {
			return o, true
		}
	}
	return ServiceOffering{}, false
}

// Service owns the payment lifecycle for resume services.
type Service struct {
	Repo      Repo
	Resumes   resumes.Repo
	Wizard    wizard.Store
	Checkout  CheckoutClient
	Generator resumes.Generator
	PublicURL string

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

func (s *Service) wait(d time.Duration) {
	if s.sleep != nil {
		s.sleep(d)
		return
	}
	time.Sleep(d)
}

// StartCheckout opens a provider session and records a PENDING payment.
func (s *Service) StartCheckout(ctx context.Context, userID, resumeID, serviceID string) (Payment, string, error) {
	offering, ok := offeringByID(serviceID)
	if !ok {
		return Payment{}, "", ErrUnknownService
	}
	if _, err := s.Resumes.GetByID(ctx, userID, resumeID); err != nil {
		return Payment{}, "", err
	}
	if latest, err := s.Repo.LatestByResume(ctx, userID, resumeID); err == nil && latest.Status == StatusPaid {
		return Payment{}, "", ErrAlreadyPaid
	}

	payment := Payment{
		ID:          uuid.NewString(),
		UserID:      userID,
		ResumeID:    resumeID,
		ServiceID:   offering.ID,
		Provider:    "checkout",
		Status:      StatusPending,
		AmountCents: offering.AmountCents,
		Currency:    offering.Currency,
	}
	session, err := s.Checkout.CreateSession(ctx, CheckoutRequest{
		PaymentID:   payment.ID,
		ServiceID:   offering.ID,
		AmountCents: offering.AmountCents,
		Currency:    offering.Currency,
		SuccessURL:  s.PublicURL + "/api/v1/payments/confirm?resumeId=" + resumeID,
		CancelURL:   s.PublicURL + "/api/v1/payments/cancel?resumeId=" + resumeID,
	})
	if err != nil {
		return Payment{}, "", err
	}
	payment.CheckoutSessionID = session.ID
	if err := s.Repo.Create(ctx, payment); err != nil {
		return Payment{}, "", err
	}
	return payment, session.RedirectURL, nil
}

// ConfirmWebhook applies a provider confirmation for a session. It is
// idempotent for already-paid sessions.
func (s *Service) ConfirmWebhook(ctx context.Context, sessionID string, status Status) error {
	payment, err := s.Repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	switch status {
	case StatusPaid:
		if payment.Status == StatusPaid {
			return nil
		}
		return s.markPaid(ctx, payment)
	case StatusUnpaid:
		// Cancelled or expired session.
		if payment.Status == StatusPending {
			return s.Repo.UpdateStatus(ctx, payment.ID, StatusUnpaid)
		}
		return nil
	case StatusPending:
		return nil
	}
	return fmt.Errorf("unknown webhook status %q", status)
}

const (
	confirmAttempts = 5
	confirmBaseWait = time.Second
	confirmMaxWait  = 8 * time.Second
)

// ConfirmAfterRedirect settles the latest payment after the user lands
// back from checkout. It polls the provider with bounded backoff as a
// fallback for a webhook that has not arrived yet.
func (s *Service) ConfirmAfterRedirect(ctx context.Context, userID, resumeID string) (Payment, error) {
	payment, err := s.Repo.LatestByResume(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Payment{}, ErrPaymentRequired
		}
		return Payment{}, err
	}
	if payment.Status == StatusPaid {
		return payment, nil
	}
	if payment.Status == StatusUnpaid {
		return Payment{}, ErrPaymentRequired
	}

	wait := confirmBaseWait
	for attempt := 0; attempt < confirmAttempts; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return Payment{}, err
			}
			s.wait(wait)
			wait *= 2
			if wait > confirmMaxWait {
				wait = confirmMaxWait
			}
		}
		status, err := s.Checkout.SessionStatus(ctx, payment.CheckoutSessionID)
		if err != nil {
			telemetry.Error("payments.status_poll_failed", map[string]any{
				"payment_id": payment.ID,
				"attempt":    attempt + 1,
				"error":      err.Error(),
			})
			continue
		}
		switch status {
		case StatusPaid:
			if err := s.markPaid(ctx, payment); err != nil {
				return Payment{}, err
			}
			return s.Repo.GetByID(ctx, payment.ID)
		case StatusUnpaid:
			if err := s.Repo.UpdateStatus(ctx, payment.ID, StatusUnpaid); err != nil {
				return Payment{}, err
			}
			return Payment{}, ErrPaymentRequired
		}
	}
	return Payment{}, ErrPaymentPending
}

// StatusFor reports the effective payment status for a resume.
func (s *Service) StatusFor(ctx context.Context, userID, resumeID string) (Status, error) {
	payment, err := s.Repo.LatestByResume(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusUnpaid, nil
		}
		return "", err
	}
	return payment.Status, nil
}

// List returns payments for the admin view.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

// markPaid flips the payment, unlocks the wizard, and kicks off
// generation when the document does not exist yet.
func (s *Service) markPaid(ctx context.Context, payment Payment) error {
	if err := s.Repo.UpdateStatus(ctx, payment.ID, StatusPaid); err != nil {
		return err
	}
	metrics.IncPaymentsConfirmed()
	state, err := wizard.Load(ctx, s.Wizard, payment.UserID, payment.ResumeID)
	if err != nil {
		return err
	}
	state.PaymentCompleted = true
	generated := state.DocumentGenerated
	if err := s.Wizard.Put(ctx, state); err != nil {
		return err
	}

	if !generated && s.Generator != nil {
		if _, err := s.Generator.Generate(ctx, payment.UserID, payment.ResumeID); err != nil {
			// The paid flag holds; generation retries on the next
			// wizard save or download attempt.
			telemetry.Error("payments.post_payment_generate_failed", map[string]any{
				"payment_id": payment.ID,
				"resume_id":  payment.ResumeID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}
