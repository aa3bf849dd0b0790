package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the Resend send-email endpoint.
const DefaultEndpoint = "https://api.resend.com/emails"

// ResendClient is the concrete Sender backed by the Resend API.
type ResendClient struct {
	apiKey     string
	fromAddr   string // e.g. "support@pinnaclewellness.com"
	fromName   string // e.g. "Pinnacle Wellness"
	endpoint   string
	httpClient *http.Client
}

// Option customises a ResendClient.
type Option func(*ResendClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *ResendClient) { r.httpClient = c }
}

// WithEndpoint points the client at a different send URL (tests, proxies).
func WithEndpoint(url string) Option {
	return func(r *ResendClient) { r.endpoint = url }
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(apiKey, fromAddr, fromName string, timeout time.Duration, opts ...Option) *ResendClient {
	c := &ResendClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Resend reports errors either as a top-level object or nested under "error"
// depending on the endpoint version, so both shapes are decoded.
type resendResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Error      *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

// Send delivers msg from the fixed support address.
func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	reqBody := resendRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr),
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	var parsed resendResponse
	// A non-JSON body is only an error when the status is also bad; that case
	// is reported below with the raw body.
	_ = json.Unmarshal(respBytes, &parsed)

	if parsed.Error != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Name:       parsed.Error.Name,
			Message:    parsed.Error.Message,
			Body:       respBytes,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Name:       parsed.Name,
			Message:    parsed.Message,
			Body:       respBytes,
		}
	}

	return nil
}
