// Package mailinglist keeps the newsletter audience in step with new survey
// records. It provides a Mailchimp-backed member upsert client and the Syncer
// handler that decides which records are forwarded.
package mailinglist

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusSubscribed is the Mailchimp member status written on every upsert.
const StatusSubscribed = "subscribed"

// Member is the payload of an add-or-update call. Status applies to an
// existing member, StatusIfNew to an address the list has not seen yet.
type Member struct {
	EmailAddress string   `json:"email_address"`
	Status       string   `json:"status"`
	StatusIfNew  string   `json:"status_if_new"`
	Tags         []string `json:"tags"`
}

// Client is the interface the Syncer uses for the mailing-list API.
// Tests inject a stub that records calls without hitting the network.
type Client interface {
	// UpsertMember adds the member to the list, or updates it if the
	// subscriber hash already exists. Safe to repeat for the same address.
	UpsertMember(ctx context.Context, m Member) error
}

// APIError is Mailchimp's problem-detail response for a failed call. Body is
// the raw response so callers can log the full diagnostic payload.
type APIError struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	StatusCode int    `json:"-"`
	Body       []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("mailinglist: Mailchimp error %d %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("mailinglist: unexpected status %d: %.200s", e.StatusCode, string(e.Body))
}

// SubscriberHash is Mailchimp's member identifier: the hex MD5 digest of the
// lowercased email address. It makes the upsert idempotent per address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// ─── MAILCHIMP CLIENT ─────────────────────────────────────────────────────────

// MailchimpClient is the concrete Client backed by the Mailchimp Marketing API.
type MailchimpClient struct {
	apiKey       string
	listID       string
	serverPrefix string // data-center code, e.g. "us21"
	httpClient   *http.Client
}

// Option customises a MailchimpClient.
type Option func(*MailchimpClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *MailchimpClient) { m.httpClient = c }
}

// NewMailchimpClient returns a Client for one audience list.
func NewMailchimpClient(apiKey, listID, serverPrefix string, timeout time.Duration, opts ...Option) *MailchimpClient {
	c := &MailchimpClient{
		apiKey:       apiKey,
		listID:       listID,
		serverPrefix: serverPrefix,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MemberURL is the list-member resource for email.
func (c *MailchimpClient) MemberURL(email string) string {
	return fmt.Sprintf("https://%s.api.mailchimp.com/3.0/lists/%s/members/%s",
		c.serverPrefix, url.PathEscape(c.listID), SubscriberHash(email))
}

// UpsertMember issues PUT /lists/{list_id}/members/{subscriber_hash}.
func (c *MailchimpClient) UpsertMember(ctx context.Context, m Member) error {
	bodyBytes, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("mailinglist: marshal member: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.MemberURL(m.EmailAddress), bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("mailinglist: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// Mailchimp accepts any username with the API key as the password.
	req.SetBasicAuth("anystring", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailinglist: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("mailinglist: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: respBytes}
		_ = json.Unmarshal(respBytes, apiErr)
		return apiErr
	}

	return nil
}
