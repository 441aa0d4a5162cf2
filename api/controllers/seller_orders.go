package controllers

import (
	"net/http"

	"github.com/bazarly/bazarly-backend/api/responses"
	"github.com/bazarly/bazarly-backend/api/validators"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/internal/verification"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

// SellerMarkPickupReady signals the package can be offered to agents.
func SellerMarkPickupReady(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkPickupReady(r.Context(), fulfillment.MarkPickupReadyInput{
			OrderID:  orderID,
			SellerID: sellerID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.FulfillmentStatusPickupReady)})
	}
}

type issuePickupCodeRequest struct {
	Phone string `json:"phone" validate:"required,min=8,max=20"`
}

// SellerIssuePickupCode sends a fresh pickup OTP to the seller's handover
// phone, superseding any previous pending code for the order.
func SellerIssuePickupCode(orders fulfillment.Service, codes verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if orders == nil || codes == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req issuePickupCodeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := orders.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.SellerID != sellerID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		if order.FulfillmentStatus != enums.FulfillmentStatusPickupReady && order.FulfillmentStatus != enums.FulfillmentStatusAccepted {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "order is not awaiting pickup"))
			return
		}

		result, err := codes.Issue(r.Context(), verification.IssueInput{
			OrderID: orderID,
			Purpose: enums.CodePurposePickupConfirmation,
			Phone:   req.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
