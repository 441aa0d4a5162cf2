package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bazarly/bazarly-backend/pkg/config"
)

func TestGetIntentStatusMapsGatewayStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-client-id") != "cid" {
			t.Errorf("unexpected client id header: %s", r.Header.Get("x-client-id"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cf_payment_id":"pay_1","order_id":"order-1","order_status":"PAID","order_amount":"499.00"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(config.PaymentsConfig{BaseURL: srv.URL, ClientID: "cid", ClientSecret: "secret"})
	intent, err := client.GetIntentStatus(context.Background(), "intent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Status != IntentStatusPaid || intent.OrderID != "order-1" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestCreateOrderIntentPostsGatewayOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pg/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req createIntentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.OrderID != "BZR-1001" || req.OrderAmount != "499.00" || req.OrderCurrency != "INR" {
			t.Errorf("unexpected request payload: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cf_payment_id":"pay_9","order_id":"BZR-1001","order_status":"ACTIVE","order_amount":"499.00"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(config.PaymentsConfig{BaseURL: srv.URL, ClientID: "cid", ClientSecret: "secret"})
	intent, err := client.CreateOrderIntent(context.Background(), "499.00", "INR", "BZR-1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.ID != "pay_9" || intent.Status != IntentStatusPending {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestCreateOrderIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(config.PaymentsConfig{BaseURL: srv.URL})
	if _, err := client.CreateOrderIntent(context.Background(), "10.00", "INR", "BZR-1002"); err == nil {
		t.Fatal("expected error for gateway failure")
	}
}

func TestGetIntentStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(config.PaymentsConfig{BaseURL: srv.URL})
	if _, err := client.GetIntentStatus(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown intent")
	}
}

func TestStatusFromGateway(t *testing.T) {
	if statusFromGateway("PAID") != IntentStatusPaid {
		t.Fatal("PAID should map to paid")
	}
	if statusFromGateway("EXPIRED") != IntentStatusFailed {
		t.Fatal("EXPIRED should map to failed")
	}
	if statusFromGateway("ACTIVE") != IntentStatusPending {
		t.Fatal("unknown states should map to pending")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	timestamp := "1724800000"
	body := []byte(`{"order_id":"order-1"}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(secret, timestamp, body, signature) {
		t.Fatal("expected valid signature to verify")
	}
	if VerifyWebhookSignature(secret, timestamp, body, "tampered") {
		t.Fatal("expected tampered signature to fail")
	}
	if VerifyWebhookSignature("other-secret", timestamp, body, signature) {
		t.Fatal("expected wrong secret to fail")
	}
}
