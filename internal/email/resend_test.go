package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyashahama/wellness-notifier/internal/email"
)

// recordedRequest is what the fake Resend server saw.
type recordedRequest struct {
	Auth        string
	ContentType string
	Body        map[string]any
}

func newFakeResend(t *testing.T, status int, respBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		seen = append(seen, recordedRequest{
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newClient(url string) *email.ResendClient {
	return email.NewResendClient("re_test", "support@pinnaclewellness.com", "Pinnacle Wellness",
		5*time.Second, email.WithEndpoint(url))
}

func TestResendClient_Send_Success(t *testing.T) {
	srv, seen := newFakeResend(t, http.StatusOK, `{"id":"email_123"}`)

	err := newClient(srv.URL).Send(context.Background(), email.Message{
		To:      "x@x.com",
		Subject: "Your Pinnacle Wellness Assessment Results",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(*seen) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*seen))
	}
	got := (*seen)[0]
	if got.Auth != "Bearer re_test" {
		t.Errorf("Authorization = %q", got.Auth)
	}
	if got.ContentType != "application/json" {
		t.Errorf("Content-Type = %q", got.ContentType)
	}
	if got.Body["from"] != "Pinnacle Wellness <support@pinnaclewellness.com>" {
		t.Errorf("from = %v", got.Body["from"])
	}
	to, _ := got.Body["to"].([]any)
	if len(to) != 1 || to[0] != "x@x.com" {
		t.Errorf("to = %v", got.Body["to"])
	}
	if got.Body["subject"] != "Your Pinnacle Wellness Assessment Results" {
		t.Errorf("subject = %v", got.Body["subject"])
	}
	if got.Body["html"] != "<p>hi</p>" {
		t.Errorf("html = %v", got.Body["html"])
	}
}

func TestResendClient_Send_APIErrorCarriesBody(t *testing.T) {
	body := `{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`
	srv, _ := newFakeResend(t, http.StatusUnprocessableEntity, body)

	err := newClient(srv.URL).Send(context.Background(), email.Message{To: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *email.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *email.APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Name != "validation_error" || apiErr.Message != "Invalid to field" {
		t.Errorf("Name/Message = %q/%q", apiErr.Name, apiErr.Message)
	}
	if string(apiErr.Body) != body {
		t.Errorf("Body = %s", apiErr.Body)
	}
}

func TestResendClient_Send_NestedErrorObject(t *testing.T) {
	srv, _ := newFakeResend(t, http.StatusOK, `{"error":{"name":"rate_limit_exceeded","message":"slow down","statusCode":429}}`)

	err := newClient(srv.URL).Send(context.Background(), email.Message{To: "x@x.com"})

	var apiErr *email.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *email.APIError, got %v", err)
	}
	if apiErr.Name != "rate_limit_exceeded" {
		t.Errorf("Name = %q", apiErr.Name)
	}
}

func TestResendClient_Send_NonJSONErrorBody(t *testing.T) {
	srv, _ := newFakeResend(t, http.StatusBadGateway, "upstream down")

	err := newClient(srv.URL).Send(context.Background(), email.Message{To: "x@x.com"})

	var apiErr *email.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *email.APIError, got %v", err)
	}
	if string(apiErr.Body) != "upstream down" {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestResendClient_Send_TransportError(t *testing.T) {
	srv, _ := newFakeResend(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	err := newClient(url).Send(context.Background(), email.Message{To: "x@x.com"})
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	var apiErr *email.APIError
	if errors.As(err, &apiErr) {
		t.Error("transport failure should not be an APIError")
	}
}
