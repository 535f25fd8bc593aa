package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CheckoutRequest describes the session to open with the provider.
type CheckoutRequest struct {
	PaymentID   string `json:"paymentId"`
	ServiceID   string `json:"serviceId"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	SuccessURL  string `json:"successUrl"`
	CancelURL   string `json:"cancelUrl"`
}

// CheckoutSession is the provider's handle for a started checkout.
type CheckoutSession struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirectUrl"`
}

// CheckoutClient is the payment provider collaborator.
type CheckoutClient interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	SessionStatus(ctx context.Context, sessionID string) (Status, error)
}

// ErrProvider is returned when the checkout provider cannot serve a
// request.
var ErrProvider = errors.New("checkout provider unavailable")

// HTTPCheckout talks to the external checkout provider.
type HTTPCheckout struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// NewHTTPCheckout constructs a provider client.
func NewHTTPCheckout(baseURL, secret string) (*HTTPCheckout, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("CHECKOUT_BASE_URL is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("CHECKOUT_SECRET is required")
	}
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("CHECKOUT_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &HTTPCheckout{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPCheckout) CreateSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return CheckoutSession{}, err
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/sessions", payload)
	if err != nil {
		return CheckoutSession{}, err
	}
	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return CheckoutSession{}, fmt.Errorf("%w: malformed session response: %v", ErrProvider, err)
	}
	if session.ID == "" || session.RedirectURL == "" {
		return CheckoutSession{}, fmt.Errorf("%w: incomplete session response", ErrProvider)
	}
	return session, nil
}

func (c *HTTPCheckout) SessionStatus(ctx context.Context, sessionID string) (Status, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/sessions/"+sessionID, nil)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed status response: %v", ErrProvider, err)
	}
	switch Status(parsed.Status) {
	case StatusUnpaid, StatusPending, StatusPaid:
		return Status(parsed.Status), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrProvider, parsed.Status)
}

func (c *HTTPCheckout) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}
	return body, nil
}

// MemoryCheckout simulates a provider for development and tests.
// Sessions start PENDING; Complete flips them to PAID.
type MemoryCheckout struct {
	mu       sync.Mutex
	sessions map[string]Status
}

func NewMemoryCheckout() *MemoryCheckout {
	return &MemoryCheckout{sessions: make(map[string]Status)}
}

func (c *MemoryCheckout) CreateSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := "sess_" + uuid.NewString()
	c.sessions[id] = StatusPending
	return CheckoutSession{ID: id, RedirectURL: "https://checkout.invalid/session/" + id}, nil
}

func (c *MemoryCheckout) SessionStatus(ctx context.Context, sessionID string) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("%w: unknown session %s", ErrProvider, sessionID)
	}
	return status, nil
}

// Complete marks a simulated session as paid.
func (c *MemoryCheckout) Complete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[sessionID]; ok {
		c.sessions[sessionID] = StatusPaid
	}
}
