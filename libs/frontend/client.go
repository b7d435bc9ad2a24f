package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Outcome of a submission as shown to the visitor.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

const (
	FallbackErrorMessage    = "Failed to send message"
	DefaultSuccessMessage   = "Message sent successfully!"
	contactEndpointPath     = "/api/contact"
	maxResponseBodyBytes    = 64 << 10
	defaultAPIClientTimeout = 15 * time.Second
)

// SubmissionResult is derived from the contact API response.
type SubmissionResult struct {
	Outcome Outcome
	Message string
}

// APIClient posts contact submissions to the backend.
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultAPIClientTimeout},
	}
}

type contactResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit sends one request and maps the response. It never retries. Any
// non-2xx response becomes an error result carrying the server's error text
// when it has one.
func (c *APIClient) Submit(ctx context.Context, sub ContactSubmission) (SubmissionResult, error) {
	return c.SubmitFrom(ctx, sub, "")
}

// SubmitFrom is Submit on behalf of a visitor; clientIP is sent as
// X-Forwarded-For so the backend rate limits the visitor, not this process.
func (c *APIClient) SubmitFrom(ctx context.Context, sub ContactSubmission, clientIP string) (SubmissionResult, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return errorResult(""), fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+contactEndpointPath, bytes.NewReader(payload))
	if err != nil {
		return errorResult(""), fmt.Errorf("build contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errorResult(""), fmt.Errorf("post contact: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return errorResult(""), fmt.Errorf("read contact response: %w", err)
	}

	var body contactResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		// Plain rate-limit text, proxy pages and mistyped fields map to the generic messages.
		body = contactResponse{}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorResult(body.Error), nil
	}

	msg := body.Message
	if msg == "" {
		msg = DefaultSuccessMessage
	}
	return SubmissionResult{Outcome: OutcomeSuccess, Message: msg}, nil
}

func errorResult(serverText string) SubmissionResult {
	if serverText == "" {
		serverText = FallbackErrorMessage
	}
	return SubmissionResult{Outcome: OutcomeError, Message: serverText}
}
