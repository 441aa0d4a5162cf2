package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/bazarly-backend/api/responses"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/pkg/config"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/bazarly/bazarly-backend/pkg/payments"
	pkgredis "github.com/bazarly/bazarly-backend/pkg/redis"
)

const eventDedupTTL = 48 * time.Hour

type paymentEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Data      struct {
		OrderID    string `json:"order_id"`
		PaymentRef string `json:"payment_ref"`
		Status     string `json:"status"`
	} `json:"data"`
}

// PaymentWebhook consumes payment gateway notifications. A PAID event moves
// the order from created to payment_cleared; everything else is acknowledged
// and dropped so the gateway stops retrying.
func PaymentWebhook(svc fulfillment.Service, cfg config.PaymentsConfig, guard pkgredis.IdempotencyStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		timestamp := r.Header.Get("x-webhook-timestamp")
		signature := r.Header.Get("x-webhook-signature")
		if timestamp == "" || signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook signature headers missing"))
			return
		}
		if !payments.VerifyWebhookSignature(cfg.WebhookSecret, timestamp, payload, signature) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		var event paymentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload"))
			return
		}
		if event.EventID == "" || event.Data.OrderID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event_id and order_id required"))
			return
		}

		// Gateways redeliver aggressively; the first delivery wins.
		if guard != nil {
			key := guard.IdempotencyKey("payment_webhook", event.EventID)
			fresh, setErr := guard.SetNX(ctx, key, "1", eventDedupTTL)
			if setErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, setErr, "webhook dedup"))
				return
			}
			if !fresh {
				responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
				return
			}
		}

		if !strings.EqualFold(event.Data.Status, "PAID") {
			logg.Info(ctx, "ignoring non-payment webhook event "+event.EventType)
			responses.WriteSuccess(w, map[string]string{"status": "ignored"})
			return
		}

		orderID, err := uuid.Parse(event.Data.OrderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		err = svc.MarkPaymentCleared(ctx, fulfillment.MarkPaymentClearedInput{
			OrderID:    orderID,
			PaymentRef: event.Data.PaymentRef,
			Actor:      fulfillment.SystemActor,
		})
		if err != nil {
			// A transition that already happened (lost race, or the order is
			// past payment clearance) is a success for the gateway's
			// purposes; the dedup slot stays so redeliveries stay quiet.
			if pkgerrors.HasCode(err, pkgerrors.CodeStaleState) || pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
				responses.WriteSuccess(w, map[string]string{"status": "already_processed"})
				return
			}
			// Release the dedup slot so the gateway retry can land.
			if guard != nil {
				_ = guard.Del(ctx, guard.IdempotencyKey("payment_webhook", event.EventID))
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "processed"})
	}
}
