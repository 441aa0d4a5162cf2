package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/db"
	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
	"github.com/bazarly/bazarly-backend/pkg/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies who is driving a transition.
type Actor struct {
	Role enums.ActorRole
	ID   *uuid.UUID
}

// SystemActor is used for webhook and reconciliation driven transitions.
var SystemActor = Actor{Role: enums.ActorRoleSystem}

// Service defines the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	MarkPaymentCleared(ctx context.Context, input MarkPaymentClearedInput) error
	ReconcilePayment(ctx context.Context, orderID uuid.UUID, intentID string) error
	MarkPickupReady(ctx context.Context, input MarkPickupReadyInput) error
	VerifyPickup(ctx context.Context, input VerifyPickupInput) error
	StartDelivery(ctx context.Context, input StartDeliveryInput) error
	ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) error
	Cancel(ctx context.Context, input CancelInput) error
	ForceReassign(ctx context.Context, input ForceReassignInput) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetTimeline(ctx context.Context, orderID uuid.UUID) (*OrderTimeline, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAgentOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListOrdersByStatus(ctx context.Context, status enums.FulfillmentStatus, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	verifier CodeVerifier
	agents   AgentReleaser
	notifier Notifier
	intents  payments.IntentClient
	meter    *metrics.Metrics
}

// CreateOrderInput captures a checkout handoff into fulfillment.
type CreateOrderInput struct {
	OrderNumber     int64
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	BuyerPhone      string
	PaymentMethod   enums.PaymentMethod
	TotalAmount     decimal.Decimal
	PickupReference string
}

// MarkPaymentClearedInput records a payment gateway confirmation.
type MarkPaymentClearedInput struct {
	OrderID    uuid.UUID
	PaymentRef string
	Actor      Actor
}

// MarkPickupReadyInput is the seller signal that the package can be offered
// to agents.
type MarkPickupReadyInput struct {
	OrderID  uuid.UUID
	SellerID uuid.UUID
}

// VerifyPickupInput carries the evidence an agent presents at the pickup
// gate: either the seller's OTP or a verbatim echo of the pickup reference.
type VerifyPickupInput struct {
	OrderID         uuid.UUID
	AgentID         uuid.UUID
	Code            string
	PickupReference string
}

// StartDeliveryInput moves a picked-up order onto the road.
type StartDeliveryInput struct {
	OrderID uuid.UUID
	AgentID uuid.UUID
}

// ConfirmDeliveryInput carries the evidence closing out an order: the buyer's
// OTP for prepaid orders, the collected cash amount for COD.
type ConfirmDeliveryInput struct {
	OrderID   uuid.UUID
	AgentID   uuid.UUID
	Code      string
	CODAmount *decimal.Decimal
}

// CancelInput aborts a non-terminal order.
type CancelInput struct {
	OrderID uuid.UUID
	Reason  string
	Actor   Actor
}

// ForceReassignInput is the admin escape hatch for a stuck assignment.
type ForceReassignInput struct {
	OrderID uuid.UUID
	AdminID uuid.UUID
	Reason  string
}

// NewService builds the fulfillment service with its required dependencies.
func NewService(repo Repository, tx txRunner, verifier CodeVerifier, agents AgentReleaser, notifier Notifier, intents payments.IntentClient, meter *metrics.Metrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("code verifier required")
	}
	if agents == nil {
		return nil, fmt.Errorf("agent releaser required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		verifier: verifier,
		agents:   agents,
		notifier: notifier,
		intents:  intents,
		meter:    meter,
	}, nil
}

// transition bundles everything applyTransition needs to move an order one
// step and record the event in the same transaction.
type transition struct {
	to      enums.FulfillmentStatus
	event   enums.OrderEventType
	actor   Actor
	updates map[string]any
	payload map[string]any
}

// applyTransition performs the compare-and-swap status update and appends the
// order event at the next sequence number. A zero-row update means another
// writer moved the order first; that surfaces as STALE_STATE and the caller's
// transaction rolls back.
func (s *service) applyTransition(ctx context.Context, tx *gorm.DB, order *models.Order, tr transition) (*models.OrderEvent, error) {
	if !canTransition(order.FulfillmentStatus, tr.to) {
		s.countTransition(order.FulfillmentStatus, tr.to, metrics.OutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.FulfillmentStatus, tr.to))
	}

	repo := s.repo.WithTx(tx)
	newSeq := order.EventSeq + 1

	updates := map[string]any{
		"fulfillment_status": tr.to,
		"event_seq":          newSeq,
	}
	for k, v := range tr.updates {
		updates[k] = v
	}

	rows, err := repo.UpdateStatusCAS(ctx, order.ID, order.FulfillmentStatus, updates)
	if err != nil {
		s.countTransition(order.FulfillmentStatus, tr.to, metrics.OutcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if rows == 0 {
		s.countTransition(order.FulfillmentStatus, tr.to, metrics.OutcomeStale)
		return nil, pkgerrors.New(pkgerrors.CodeStaleState, "order changed concurrently, reload and retry")
	}

	event := &models.OrderEvent{
		OrderID:   order.ID,
		Seq:       newSeq,
		EventType: tr.event,
		ActorRole: tr.actor.Role,
		ActorID:   tr.actor.ID,
	}
	if tr.payload != nil {
		raw, err := json.Marshal(tr.payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal event payload")
		}
		event.Payload = raw
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		if db.IsUniqueViolation(err, "ux_order_events_order_seq") {
			s.countTransition(order.FulfillmentStatus, tr.to, metrics.OutcomeStale)
			return nil, pkgerrors.Wrap(pkgerrors.CodeStaleState, err, "event sequence already taken")
		}
		s.countTransition(order.FulfillmentStatus, tr.to, metrics.OutcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order event")
	}

	s.countTransition(order.FulfillmentStatus, tr.to, metrics.OutcomeApplied)
	order.FulfillmentStatus = tr.to
	order.EventSeq = newSeq
	return event, nil
}

func (s *service) countTransition(from, to enums.FulfillmentStatus, outcome string) {
	if s.meter == nil {
		return
	}
	s.meter.Transitions.WithLabelValues(from.String(), to.String(), outcome).Inc()
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.Find(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil || input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer and seller ids required")
	}
	if input.BuyerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer phone required")
	}
	if input.PickupReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup reference required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if input.TotalAmount.IsNegative() || input.TotalAmount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}

	orderNumber := input.OrderNumber
	if orderNumber == 0 {
		orderNumber = time.Now().UTC().UnixMilli()
	}

	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, &models.Order{
			OrderNumber:       orderNumber,
			BuyerID:           input.BuyerID,
			SellerID:          input.SellerID,
			BuyerPhone:        input.BuyerPhone,
			FulfillmentStatus: enums.FulfillmentStatusCreated,
			EventSeq:          1,
			PaymentMethod:     input.PaymentMethod,
			TotalAmount:       input.TotalAmount,
			PickupReference:   input.PickupReference,
			AssignmentStatus:  enums.AssignmentStatusUnassigned,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created

		event = &models.OrderEvent{
			OrderID:   order.ID,
			Seq:       1,
			EventType: enums.EventOrderCreated,
			ActorRole: enums.ActorRoleBuyer,
			ActorID:   &input.BuyerID,
		}
		return repo.CreateEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return order, nil
}

func (s *service) MarkPaymentCleared(ctx context.Context, input MarkPaymentClearedInput) error {
	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded

		event, err = s.applyTransition(ctx, tx, order, transition{
			to:      enums.FulfillmentStatusPaymentCleared,
			event:   enums.EventOrderPaymentCleared,
			actor:   input.Actor,
			payload: map[string]any{"payment_ref": input.PaymentRef},
		})
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

// ReconcilePayment re-checks the gateway when a webhook may have been missed
// and clears the order if the intent is in fact paid.
func (s *service) ReconcilePayment(ctx context.Context, orderID uuid.UUID, intentID string) error {
	if s.intents == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "payment gateway client not configured")
	}
	intent, err := s.intents.GetIntentStatus(ctx, intentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment intent")
	}
	switch intent.Status {
	case payments.IntentStatusPaid:
		return s.MarkPaymentCleared(ctx, MarkPaymentClearedInput{
			OrderID:    orderID,
			PaymentRef: intent.ID,
			Actor:      SystemActor,
		})
	case payments.IntentStatusFailed:
		return s.Cancel(ctx, CancelInput{
			OrderID: orderID,
			Reason:  "payment failed at gateway",
			Actor:   SystemActor,
		})
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, "payment intent still pending")
	}
}

func (s *service) MarkPickupReady(ctx context.Context, input MarkPickupReadyInput) error {
	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded
		if order.SellerID != input.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}

		event, err = s.applyTransition(ctx, tx, order, transition{
			to:    enums.FulfillmentStatusPickupReady,
			event: enums.EventOrderPickupReady,
			actor: Actor{Role: enums.ActorRoleSeller, ID: &input.SellerID},
		})
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

func (s *service) VerifyPickup(ctx context.Context, input VerifyPickupInput) error {
	if input.Code == "" && input.PickupReference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup code or reference required")
	}

	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded
		if err := requireAssignedAgent(order, input.AgentID); err != nil {
			return err
		}

		method := "reference"
		if input.Code != "" {
			method = "code"
			if err := s.verifier.VerifyInTx(ctx, tx, order.ID, enums.CodePurposePickupConfirmation, input.Code); err != nil {
				return err
			}
		} else if input.PickupReference != order.PickupReference {
			return pkgerrors.New(pkgerrors.CodeEvidenceMismatch, "pickup reference does not match")
		}

		now := time.Now().UTC()
		event, err = s.applyTransition(ctx, tx, order, transition{
			to:    enums.FulfillmentStatusPickupVerified,
			event: enums.EventOrderPickupVerified,
			actor: Actor{Role: enums.ActorRoleAgent, ID: &input.AgentID},
			updates: map[string]any{
				"pickup_completed":           true,
				"pickup_completed_at":        now,
				"pickup_verification_method": method,
			},
			payload: map[string]any{"method": method},
		})
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

func (s *service) StartDelivery(ctx context.Context, input StartDeliveryInput) error {
	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded
		if err := requireAssignedAgent(order, input.AgentID); err != nil {
			return err
		}
		if !order.PickupCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "pickup not verified yet")
		}

		event, err = s.applyTransition(ctx, tx, order, transition{
			to:    enums.FulfillmentStatusOutForDelivery,
			event: enums.EventOrderOutForDelivery,
			actor: Actor{Role: enums.ActorRoleAgent, ID: &input.AgentID},
		})
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

func (s *service) ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) error {
	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded
		if err := requireAssignedAgent(order, input.AgentID); err != nil {
			return err
		}

		method := "delivery_code"
		now := time.Now().UTC()
		updates := map[string]any{
			"delivery_completed":     true,
			"delivered_at":           now,
			"delivery_attempt_count": order.DeliveryAttemptCount + 1,
			"assignment_status":      enums.AssignmentStatusAccepted,
		}

		if order.CODRequired() {
			method = "cod"
			if input.CODAmount == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "collected amount required for cod order")
			}
			if !input.CODAmount.Equal(order.TotalAmount) {
				return pkgerrors.New(pkgerrors.CodeEvidenceMismatch, "collected amount does not match order total")
			}
			updates["cod_collected_amount"] = *input.CODAmount
			updates["cod_collected_at"] = now
		} else {
			if input.Code == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "delivery code required")
			}
			if err := s.verifier.VerifyInTx(ctx, tx, order.ID, enums.CodePurposeDeliveryConfirmation, input.Code); err != nil {
				return err
			}
		}

		event, err = s.applyTransition(ctx, tx, order, transition{
			to:      enums.FulfillmentStatusDelivered,
			event:   enums.EventOrderDelivered,
			actor:   Actor{Role: enums.ActorRoleAgent, ID: &input.AgentID},
			updates: updates,
			payload: map[string]any{"method": method},
		})
		if err != nil {
			return err
		}

		if err := repo.CreateDeliveryAttempt(ctx, &models.DeliveryAttempt{
			OrderID:   order.ID,
			AgentID:   input.AgentID,
			Method:    method,
			Succeeded: true,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery attempt")
		}

		return s.agents.ReleaseInTx(ctx, tx, input.AgentID)
	})
	if err != nil {
		s.recordFailedDelivery(ctx, order, input, err)
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

// recordFailedDelivery keeps an audit trail of evidence failures at the door.
// Written outside the rolled-back transaction, best effort.
func (s *service) recordFailedDelivery(ctx context.Context, order *models.Order, input ConfirmDeliveryInput, cause error) {
	if order == nil {
		return
	}
	appErr := pkgerrors.As(cause)
	if appErr == nil {
		return
	}
	switch appErr.Code() {
	case pkgerrors.CodeEvidenceMismatch, pkgerrors.CodeCodeMismatch, pkgerrors.CodeCodeExpired, pkgerrors.CodeCodeAttemptsExceeded:
	default:
		return
	}
	method := "delivery_code"
	if order.CODRequired() {
		method = "cod"
	}
	failure := string(appErr.Code())
	_ = s.repo.CreateDeliveryAttempt(ctx, &models.DeliveryAttempt{
		OrderID:     input.OrderID,
		AgentID:     input.AgentID,
		Method:      method,
		Succeeded:   false,
		FailureCode: &failure,
	})
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded
		if order.FulfillmentStatus.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already in a terminal state")
		}

		now := time.Now().UTC()
		boundAgent := order.AgentID
		event, err = s.applyTransition(ctx, tx, order, transition{
			to:    enums.FulfillmentStatusCancelled,
			event: enums.EventOrderCancelled,
			actor: input.Actor,
			updates: map[string]any{
				"cancel_reason": input.Reason,
				"cancelled_at":  now,
			},
			payload: map[string]any{"reason": input.Reason},
		})
		if err != nil {
			return err
		}

		if err := s.verifier.CancelPendingInTx(ctx, tx, order.ID); err != nil {
			return err
		}
		if boundAgent != nil {
			return s.agents.ReleaseInTx(ctx, tx, *boundAgent)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

func (s *service) ForceReassign(ctx context.Context, input ForceReassignInput) error {
	var order *models.Order
	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = loaded
		if order.AgentID == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order has no agent to reassign")
		}
		previousAgent := *order.AgentID

		event, err = s.applyTransition(ctx, tx, order, transition{
			to:    enums.FulfillmentStatusPickupReady,
			event: enums.EventOrderReassigned,
			actor: Actor{Role: enums.ActorRoleAdmin, ID: &input.AdminID},
			updates: map[string]any{
				"assignment_status":          enums.AssignmentStatusUnassigned,
				"agent_id":                   nil,
				"assigned_at":                nil,
				"accepted_at":                nil,
				"pickup_completed":           false,
				"pickup_completed_at":        nil,
				"pickup_verification_method": nil,
			},
			payload: map[string]any{
				"previous_agent_id": previousAgent.String(),
				"reason":            input.Reason,
			},
		})
		if err != nil {
			return err
		}

		if err := s.verifier.CancelPendingInTx(ctx, tx, order.ID); err != nil {
			return err
		}
		return s.agents.ReleaseInTx(ctx, tx, previousAgent)
	})
	if err != nil {
		return err
	}

	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.loadOrder(ctx, s.repo, orderID)
}

func (s *service) GetTimeline(ctx context.Context, orderID uuid.UUID) (*OrderTimeline, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order events")
	}
	attempts, err := s.repo.ListDeliveryAttempts(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery attempts")
	}
	return &OrderTimeline{Order: *order, Events: events, Attempts: attempts}, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return list, nil
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return list, nil
}

func (s *service) ListAgentOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListByAgent(ctx, agentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent orders")
	}
	return list, nil
}

func (s *service) ListOrdersByStatus(ctx context.Context, status enums.FulfillmentStatus, params pagination.Params) (*OrderList, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown fulfillment status")
	}
	list, err := s.repo.ListByStatus(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by status")
	}
	return list, nil
}

func requireAssignedAgent(order *models.Order, agentID uuid.UUID) error {
	if agentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	if order.AgentID == nil || *order.AgentID != agentID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to agent")
	}
	return nil
}
