package controllers

import (
	"net/http"
	"strings"

	"github.com/bazarly/bazarly-backend/api/responses"
	"github.com/bazarly/bazarly-backend/api/validators"
	"github.com/bazarly/bazarly-backend/internal/agents"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

type adminCancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=256"`
}

// AdminCancelOrder aborts any non-terminal order.
func AdminCancelOrder(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adminCancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), fulfillment.CancelInput{
			OrderID: orderID,
			Reason:  req.Reason,
			Actor:   fulfillment.Actor{Role: enums.ActorRoleAdmin, ID: &adminID},
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.FulfillmentStatusCancelled)})
	}
}

type adminReassignRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=256"`
}

// AdminReassignOrder strips a stuck assignment and returns the order to the
// dispatch queue.
func AdminReassignOrder(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adminReassignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ForceReassign(r.Context(), fulfillment.ForceReassignInput{
			OrderID: orderID,
			AdminID: adminID,
			Reason:  req.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.FulfillmentStatusPickupReady)})
	}
}

// AdminListOrders returns orders filtered by fulfillment status.
func AdminListOrders(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("status"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status query parameter required"))
			return
		}
		status, err := enums.ParseFulfillmentStatus(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrdersByStatus(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminOrderTimeline returns the full event and attempt history for support.
func AdminOrderTimeline(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		timeline, err := svc.GetTimeline(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, timeline)
	}
}

type reconcileRequest struct {
	IntentID string `json:"intent_id" validate:"required,min=4,max=128"`
}

// AdminReconcilePayment re-checks the gateway for an order stuck in created
// after a missed webhook.
func AdminReconcilePayment(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reconcileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReconcilePayment(r.Context(), orderID, req.IntentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reconciled"})
	}
}

// AdminListOnlineAgents returns agents currently on shift.
func AdminListOnlineAgents(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agent service unavailable"))
			return
		}

		list, err := svc.ListOnline(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"agents": list})
	}
}
