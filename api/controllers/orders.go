package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bazarly/bazarly-backend/api/middleware"
	"github.com/bazarly/bazarly-backend/api/responses"
	"github.com/bazarly/bazarly-backend/api/validators"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

type createOrderRequest struct {
	SellerID        string `json:"seller_id" validate:"required,uuid4"`
	BuyerPhone      string `json:"buyer_phone" validate:"required,min=8,max=20"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=prepaid cod"`
	TotalAmount     string `json:"total_amount" validate:"required"`
	PickupReference string `json:"pickup_reference" validate:"required,min=4,max=64"`
}

// CreateOrder registers a checkout handoff as a fulfillment order.
func CreateOrder(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerID, err := parseUUIDField(req.SellerID, "seller_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.TotalAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid total amount"))
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		order, err := svc.CreateOrder(r.Context(), fulfillment.CreateOrderInput{
			BuyerID:         buyerID,
			SellerID:        sellerID,
			BuyerPhone:      req.BuyerPhone,
			PaymentMethod:   method,
			TotalAmount:     amount,
			PickupReference: req.PickupReference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListMyOrders returns the caller's orders for their active role.
func ListMyOrders(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list *fulfillment.OrderList
		switch enums.ActorRole(middleware.RoleFromContext(r.Context())) {
		case enums.ActorRoleBuyer:
			list, err = svc.ListBuyerOrders(r.Context(), callerID, params)
		case enums.ActorRoleSeller:
			list, err = svc.ListSellerOrders(r.Context(), callerID, params)
		case enums.ActorRoleAgent:
			list, err = svc.ListAgentOrders(r.Context(), callerID, params)
		default:
			err = pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns one order. Only a party to the order may read it.
func OrderDetail(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.ActorRole(middleware.RoleFromContext(r.Context()))
		if role != enums.ActorRoleAdmin && !orderParty(order.BuyerID == callerID, order.SellerID == callerID, order.AgentID != nil && *order.AgentID == callerID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderTimeline returns the full event log for an order the caller is party to.
func OrderTimeline(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

		order := timeline.Order
		role := enums.ActorRole(middleware.RoleFromContext(r.Context()))
		if role != enums.ActorRoleAdmin && !orderParty(order.BuyerID == callerID, order.SellerID == callerID, order.AgentID != nil && *order.AgentID == callerID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, timeline)
	}
}

func orderParty(matches ...bool) bool {
	for _, m := range matches {
		if m {
			return true
		}
	}
	return false
}
