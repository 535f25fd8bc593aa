package formatting

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
	"time"

	"hirepath-backend/internal/resumes"
)

// Client calls the external formatting service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a formatting client against the given base URL.
func NewClient(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("FORMATTER_BASE_URL is required")
	}
	timeout := 60 * time.Second
	if raw := strings.TrimSpace(os.Getenv("FORMATTER_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type formatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RenderRaw sends the whole draft and receives a rendered .docx.
func (c *Client) RenderRaw(ctx context.Context, draft resumes.Draft) ([]byte, error) {
	payload, err := json.Marshal(BuildStructured(draft))
	if err != nil {
		return nil, err
	}
	return c.postForDocx(ctx, "/format/raw", payload)
}

// RenderStructured renders from a previously structured document.
func (c *Client) RenderStructured(ctx context.Context, structured json.RawMessage) ([]byte, error) {
	return c.postForDocx(ctx, "/format/json", structured)
}

// Structure asks the service for the canonical structured document.
func (c *Client) Structure(ctx context.Context, draft resumes.Draft) (json.RawMessage, error) {
	payload, err := json.Marshal(BuildStructured(draft))
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "/structure", payload, "application/json")
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid structured response", ErrUnavailable)
	}
	return json.RawMessage(body), nil
}

func (c *Client) postForDocx(ctx context.Context, path string, payload []byte) ([]byte, error) {
	body, err := c.post(ctx, path, payload, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrUnavailable)
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("%w: request timeout: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed formatError
		if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", ErrUnavailable, parsed.Error.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return body, nil
}
