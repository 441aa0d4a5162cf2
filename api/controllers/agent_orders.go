package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bazarly/bazarly-backend/api/responses"
	"github.com/bazarly/bazarly-backend/api/validators"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/internal/verification"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

type verifyPickupRequest struct {
	Code            string `json:"code" validate:"omitempty,len=6,numeric"`
	PickupReference string `json:"pickup_reference" validate:"omitempty,max=64"`
}

// AgentVerifyPickup consumes pickup evidence at the seller's gate: the OTP or
// a verbatim pickup reference echo.
func AgentVerifyPickup(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req verifyPickupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.Code == "" && req.PickupReference == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code or pickup_reference required"))
			return
		}

		if err := svc.VerifyPickup(r.Context(), fulfillment.VerifyPickupInput{
			OrderID:         orderID,
			AgentID:         agentID,
			Code:            req.Code,
			PickupReference: req.PickupReference,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.FulfillmentStatusPickupVerified)})
	}
}

// AgentStartDelivery moves a picked-up order onto the road.
func AgentStartDelivery(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.StartDelivery(r.Context(), fulfillment.StartDeliveryInput{
			OrderID: orderID,
			AgentID: agentID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.FulfillmentStatusOutForDelivery)})
	}
}

type confirmDeliveryRequest struct {
	Code      string `json:"code" validate:"omitempty,len=6,numeric"`
	CODAmount string `json:"cod_amount" validate:"omitempty"`
}

// AgentConfirmDelivery closes out an order with the buyer's OTP (prepaid) or
// the collected cash amount (COD).
func AgentConfirmDelivery(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req confirmDeliveryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := fulfillment.ConfirmDeliveryInput{
			OrderID: orderID,
			AgentID: agentID,
			Code:    req.Code,
		}
		if req.CODAmount != "" {
			amount, err := decimal.NewFromString(req.CODAmount)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cod amount"))
				return
			}
			input.CODAmount = &amount
		}

		if err := svc.ConfirmDelivery(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.FulfillmentStatusDelivered)})
	}
}

// AgentIssueDeliveryCode resends the delivery OTP to the buyer's phone when
// the agent is at the doorstep and the buyer lost the original message.
func AgentIssueDeliveryCode(orders fulfillment.Service, codes verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if orders == nil || codes == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := orders.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.AgentID == nil || *order.AgentID != agentID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		if order.FulfillmentStatus != enums.FulfillmentStatusOutForDelivery {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "order is not out for delivery"))
			return
		}

		result, err := codes.Issue(r.Context(), verification.IssueInput{
			OrderID: orderID,
			Purpose: enums.CodePurposeDeliveryConfirmation,
			Phone:   order.BuyerPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
