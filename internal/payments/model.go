package payments

import "time"

// Status is the payment lifecycle state for a resume's paid services.
type Status string

const (
	StatusUnpaid  Status = "UNPAID"
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// Payment tracks one checkout attempt for a resume service.
type Payment struct {
	ID                string
	UserID            string
	ResumeID          string
	ServiceID         string
	Provider          string
	CheckoutSessionID string
	Status            Status
	AmountCents       int64
	Currency          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
