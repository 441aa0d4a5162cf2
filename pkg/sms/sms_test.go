package sms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestHTTPSenderPostsMessage(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender(config.SMSConfig{
		ProviderURL: srv.URL,
		APIKey:      "test-key",
		SenderID:    "BZRLY",
	}, testLogger())

	if err := sender.Send(context.Background(), "+919900112233", "Your pickup code is 123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.To != "+919900112233" || got.SenderID != "BZRLY" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestHTTPSenderRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender(config.SMSConfig{ProviderURL: srv.URL}, testLogger())
	if err := sender.Send(context.Background(), "+911234567890", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestHTTPSenderGivesUpAfterRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender := NewHTTPSender(config.SMSConfig{ProviderURL: srv.URL}, testLogger())
	if err := sender.Send(context.Background(), "+911234567890", "hi"); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
}

func TestSandboxSenderNeverFails(t *testing.T) {
	sender := NewSandboxSender(testLogger())
	if err := sender.Send(context.Background(), "+911234567890", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
