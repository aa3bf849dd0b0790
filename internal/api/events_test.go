package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nyashahama/wellness-notifier/internal/api"
	"github.com/nyashahama/wellness-notifier/internal/email"
	"github.com/nyashahama/wellness-notifier/internal/notify"
	"github.com/nyashahama/wellness-notifier/internal/survey"
	"github.com/nyashahama/wellness-notifier/internal/trigger"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubDispatcher records dispatched events.
type stubDispatcher struct {
	events []survey.Event
	err    error
}

func (d *stubDispatcher) Dispatch(_ context.Context, ev survey.Event) error {
	d.events = append(d.events, ev)
	return d.err
}

// stubSender captures sent emails.
type stubSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *stubSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

const eventsPath = "/api/events/survey-responses"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfgOverrides ...func(*api.Config)) (*stubDispatcher, http.Handler) {
	t.Helper()
	d := &stubDispatcher{}
	cfg := api.Config{}
	for _, fn := range cfgOverrides {
		fn(&cfg)
	}
	return d, api.NewServer(d, cfg, discardLogger())
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v (raw: %s)", err, rr.Body.String())
	}
}

func signature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// ─── GET /healthz, /metrics ───────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rr := doRequest(t, h, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMetrics(t *testing.T) {
	_, h := newTestServer(t)
	rr := doRequest(t, h, http.MethodGet, "/metrics", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "wellness_events_received_total") {
		t.Error("metrics output is missing wellness_events_received_total")
	}
}

// ─── POST /api/events/survey-responses ────────────────────────────────────────

func TestSurveyResponse_DispatchesDecodedEvent(t *testing.T) {
	d, h := newTestServer(t)
	body := []byte(`{"document_id":"resp_42","data":{"email":"a@b.com","subscribeNewsletter":true,"totalScore":180,"domainScores":{"Physical Wellness":14}}}`)

	rr := doRequest(t, h, http.MethodPost, eventsPath, body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status     string `json:"status"`
		DocumentID string `json:"document_id"`
	}
	decodeJSON(t, rr, &resp)
	if resp.DocumentID != "resp_42" {
		t.Errorf("document_id = %q, want resp_42", resp.DocumentID)
	}

	if len(d.events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(d.events))
	}
	ev := d.events[0]
	if ev.DocumentID != "resp_42" {
		t.Errorf("DocumentID = %q", ev.DocumentID)
	}
	if got := ev.Record.Email.Value(); got != "a@b.com" {
		t.Errorf("Email = %q", got)
	}
	if ev.Record.TotalScore != 180 {
		t.Errorf("TotalScore = %v", ev.Record.TotalScore)
	}
	if ev.Record.DomainScores["Physical Wellness"] != 14 {
		t.Errorf("DomainScores = %v", ev.Record.DomainScores)
	}
}

func TestSurveyResponse_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"document_id":`, http.StatusBadRequest},
		{"missing document_id", `{"data":{"email":"a@b.com"}}`, http.StatusBadRequest},
		{"missing data", `{"document_id":"resp_1"}`, http.StatusBadRequest},
		{"null data", `{"document_id":"resp_1","data":null}`, http.StatusBadRequest},
		{"data not an object", `{"document_id":"resp_1","data":42}`, http.StatusBadRequest},
		{"wrong score type", `{"document_id":"resp_1","data":{"totalScore":"high"}}`, http.StatusBadRequest},
		{"numeric string score", `{"document_id":"resp_1","data":{"email":"a@b.com","totalScore":"300"}}`, http.StatusBadRequest},
		{"string newsletter flag", `{"document_id":"resp_1","data":{"email":"a@b.com","subscribeNewsletter":"true"}}`, http.StatusBadRequest},
		{"string domain score", `{"document_id":"resp_1","data":{"email":"a@b.com","domainScores":{"Physical Wellness":"20"}}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, h := newTestServer(t)
			rr := doRequest(t, h, http.MethodPost, eventsPath, []byte(tt.body), nil)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			if len(d.events) != 0 {
				t.Errorf("dispatched %d events, want 0", len(d.events))
			}
		})
	}
}

func TestSurveyResponse_ValidationErrorNamesField(t *testing.T) {
	_, h := newTestServer(t)
	rr := doRequest(t, h, http.MethodPost, eventsPath, []byte(`{"data":{}}`), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Error != "validation_failed" {
		t.Errorf("error = %q, want validation_failed", resp.Error)
	}
	if tags := resp.Fields["document_id"]; len(tags) != 1 || tags[0] != "required" {
		t.Errorf("fields[document_id] = %v, want [required]", tags)
	}
}

func TestSurveyResponse_BodyTooLarge(t *testing.T) {
	d, h := newTestServer(t)
	big := `{"document_id":"resp_1","data":{"email":"` + strings.Repeat("a", 1<<20) + `"}}`

	rr := doRequest(t, h, http.MethodPost, eventsPath, []byte(big), nil)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	if len(d.events) != 0 {
		t.Error("oversized event was dispatched")
	}
}

func TestSurveyResponse_DispatchPanicIs500(t *testing.T) {
	d, h := newTestServer(t)
	d.err = &trigger.PanicError{Handler: "results_notifier", Value: "boom"}

	rr := doRequest(t, h, http.MethodPost, eventsPath, []byte(`{"document_id":"resp_1","data":{}}`), nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Error("500 body leaks internal details")
	}
}

// ─── Signature verification ───────────────────────────────────────────────────

func TestSurveyResponse_Signature(t *testing.T) {
	const secret = "whsec_test"
	body := []byte(`{"document_id":"resp_1","data":{"email":"a@b.com"}}`)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", signature(secret, body), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", signature("other", body), http.StatusUnauthorized},
		{"no scheme", strings.TrimPrefix(signature(secret, body), "sha256="), http.StatusUnauthorized},
		{"not hex", "sha256=zz", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, h := newTestServer(t, func(c *api.Config) { c.SigningSecret = secret })
			headers := map[string]string{}
			if tt.header != "" {
				headers["X-Event-Signature"] = tt.header
			}
			rr := doRequest(t, h, http.MethodPost, eventsPath, body, headers)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			if wantDispatch := tt.want == http.StatusOK; (len(d.events) == 1) != wantDispatch {
				t.Errorf("dispatched %d events, want dispatch=%v", len(d.events), wantDispatch)
			}
		})
	}
}

func TestSurveyResponse_NoSecretSkipsVerification(t *testing.T) {
	d, h := newTestServer(t)
	rr := doRequest(t, h, http.MethodPost, eventsPath, []byte(`{"document_id":"resp_1","data":{}}`),
		map[string]string{"X-Event-Signature": "sha256=00"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(d.events) != 1 {
		t.Errorf("dispatched %d events, want 1", len(d.events))
	}
}

// ─── End to end ───────────────────────────────────────────────────────────────

// A single-respondent record posted to the endpoint reaches the notifier
// through the real dispatcher and produces one results email.
func TestSurveyResponse_EndToEnd(t *testing.T) {
	sender := &stubSender{}
	notifier := notify.NewNotifier(sender, notify.RenderOptions{BookingURL: "https://example.com/book"}, nil, discardLogger())
	runner := trigger.NewRunner(discardLogger(), notifier)
	h := api.NewServer(runner, api.Config{}, discardLogger())

	body := []byte(`{"document_id":"resp_1","data":{"email":"x@x.com","totalScore":300,"domainScores":{"Physical Wellness":20}}}`)
	rr := doRequest(t, h, http.MethodPost, eventsPath, body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "x@x.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "Your Pinnacle Wellness Assessment Results" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "20 - Thriving") {
		t.Error("body is missing the domain line \"20 - Thriving\"")
	}
}
