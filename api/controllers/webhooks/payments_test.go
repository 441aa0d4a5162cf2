package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/pkg/config"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

const testWebhookSecret = "whsec_test"

type stubWebhookFulfillment struct {
	fulfillment.Service
	markErr error
	marked  []fulfillment.MarkPaymentClearedInput
}

func (s *stubWebhookFulfillment) MarkPaymentCleared(_ context.Context, input fulfillment.MarkPaymentClearedInput) error {
	s.marked = append(s.marked, input)
	return s.markErr
}

type stubDedupGuard struct {
	keys    map[string]bool
	deleted []string
}

func (s *stubDedupGuard) Get(_ context.Context, _ string) (string, error) { return "", nil }

func (s *stubDedupGuard) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.keys == nil {
		s.keys = map[string]bool{}
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubDedupGuard) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (s *stubDedupGuard) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func signedWebhookRequest(t *testing.T, eventID, orderID, status string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event_id":   eventID,
		"event_type": "payment.update",
		"data": map[string]string{
			"order_id":    orderID,
			"payment_ref": "pay_1",
			"status":      status,
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	timestamp := "1724800000"
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(string(body)))
	req.Header.Set("x-webhook-timestamp", timestamp)
	req.Header.Set("x-webhook-signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return req
}

func newWebhookHandler(svc fulfillment.Service, guard *stubDedupGuard) http.HandlerFunc {
	logg := logger.New(logger.Options{ServiceName: "test-webhooks", Level: zerolog.Disabled, Output: io.Discard})
	return PaymentWebhook(svc, config.PaymentsConfig{WebhookSecret: testWebhookSecret}, guard, logg)
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return body.Data["status"]
}

func TestPaymentWebhookClearsOrder(t *testing.T) {
	svc := &stubWebhookFulfillment{}
	guard := &stubDedupGuard{}
	handler := newWebhookHandler(svc, guard)

	rec := httptest.NewRecorder()
	handler(rec, signedWebhookRequest(t, "evt-1", uuid.NewString(), "PAID"))

	if rec.Code != http.StatusOK || decodeStatus(t, rec) != "processed" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
	if len(svc.marked) != 1 {
		t.Fatalf("expected one clearance call, got %d", len(svc.marked))
	}
}

func TestPaymentWebhookRedeliveryAfterClearanceIsSuccess(t *testing.T) {
	svc := &stubWebhookFulfillment{
		markErr: pkgerrors.New(pkgerrors.CodeConflict, "transition created -> payment_cleared not allowed"),
	}
	guard := &stubDedupGuard{}
	handler := newWebhookHandler(svc, guard)

	rec := httptest.NewRecorder()
	handler(rec, signedWebhookRequest(t, "evt-2", uuid.NewString(), "PAID"))

	if rec.Code != http.StatusOK || decodeStatus(t, rec) != "already_processed" {
		t.Fatalf("redelivery for a cleared order must answer 200 already_processed, got %d %s", rec.Code, rec.Body.String())
	}
	if len(guard.deleted) != 0 {
		t.Fatalf("dedup key must survive an already-processed redelivery, deleted %v", guard.deleted)
	}
}

func TestPaymentWebhookLostRaceIsSuccess(t *testing.T) {
	svc := &stubWebhookFulfillment{
		markErr: pkgerrors.New(pkgerrors.CodeStaleState, "order state changed"),
	}
	guard := &stubDedupGuard{}
	handler := newWebhookHandler(svc, guard)

	rec := httptest.NewRecorder()
	handler(rec, signedWebhookRequest(t, "evt-3", uuid.NewString(), "PAID"))

	if rec.Code != http.StatusOK || decodeStatus(t, rec) != "already_processed" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPaymentWebhookFailureReleasesDedupSlot(t *testing.T) {
	svc := &stubWebhookFulfillment{
		markErr: pkgerrors.New(pkgerrors.CodeDependency, "db unavailable"),
	}
	guard := &stubDedupGuard{}
	handler := newWebhookHandler(svc, guard)

	rec := httptest.NewRecorder()
	handler(rec, signedWebhookRequest(t, "evt-4", uuid.NewString(), "PAID"))

	if rec.Code == http.StatusOK {
		t.Fatalf("a dependency failure must not be acknowledged, got %s", rec.Body.String())
	}
	if len(guard.deleted) != 1 {
		t.Fatalf("expected the dedup slot released for the gateway retry, deleted %v", guard.deleted)
	}
}

func TestPaymentWebhookDuplicateDelivery(t *testing.T) {
	svc := &stubWebhookFulfillment{}
	guard := &stubDedupGuard{}
	handler := newWebhookHandler(svc, guard)

	orderID := uuid.NewString()
	first := httptest.NewRecorder()
	handler(first, signedWebhookRequest(t, "evt-5", orderID, "PAID"))
	second := httptest.NewRecorder()
	handler(second, signedWebhookRequest(t, "evt-5", orderID, "PAID"))

	if second.Code != http.StatusOK || decodeStatus(t, second) != "duplicate" {
		t.Fatalf("unexpected response: %d %s", second.Code, second.Body.String())
	}
	if len(svc.marked) != 1 {
		t.Fatalf("duplicate delivery must not clear twice, got %d calls", len(svc.marked))
	}
}
