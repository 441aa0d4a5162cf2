package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/db"
	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service offers payment-cleared orders to agents and arbitrates accept races.
type Service interface {
	// ListEligible returns the FIFO queue as seen by one agent: offerable
	// orders minus the ones that agent rejected recently. Agents that cannot
	// receive offers see an empty queue.
	ListEligible(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]QueueItem, error)
	// Accept claims the order for the agent. Exactly one concurrent caller
	// wins; losers get STALE_STATE, busy agents get AGENT_BUSY.
	Accept(ctx context.Context, agentID, orderID uuid.UUID) (*models.Order, error)
	// Reject records the refusal and hides the order from this agent for the
	// configured cool-down. The order stays in the queue for everyone else.
	Reject(ctx context.Context, agentID, orderID uuid.UUID, reason string) error
}

type service struct {
	queue     Repository
	orders    fulfillment.Repository
	binder    OrderBinder
	lookup    AgentLookup
	tx        txRunner
	cooldowns CooldownStore
	notifier  fulfillment.Notifier
	cfg       config.DispatchConfig
	meter     *metrics.Metrics
}

// NewService builds the dispatcher.
func NewService(queue Repository, orders fulfillment.Repository, binder OrderBinder, lookup AgentLookup, tx txRunner, cooldowns CooldownStore, notifier fulfillment.Notifier, cfg config.DispatchConfig, meter *metrics.Metrics) (Service, error) {
	if queue == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if binder == nil {
		return nil, fmt.Errorf("order binder required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("agent lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cooldowns == nil {
		return nil, fmt.Errorf("cooldown store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		queue:     queue,
		orders:    orders,
		binder:    binder,
		lookup:    lookup,
		tx:        tx,
		cooldowns: cooldowns,
		notifier:  notifier,
		cfg:       cfg,
		meter:     meter,
	}, nil
}

func (s *service) ListEligible(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]QueueItem, error) {
	agent, err := s.lookup.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.CanReceiveOffers() {
		return []QueueItem{}, nil
	}

	limit := pagination.NormalizeLimit(params.Limit)
	orders, err := s.queue.ListQueue(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dispatch queue")
	}

	items := make([]QueueItem, 0, len(orders))
	for _, order := range orders {
		hidden, err := s.cooldowns.InRejectCooldown(ctx, agentID.String(), order.ID.String())
		if err != nil {
			// A cooldown read failure must not empty the queue; show the
			// order and let the agent decide again.
			hidden = false
		}
		if hidden {
			continue
		}
		items = append(items, NewQueueItem(order))
	}
	return items, nil
}

func (s *service) Accept(ctx context.Context, agentID, orderID uuid.UUID) (*models.Order, error) {
	agent, err := s.lookup.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	var event *models.OrderEvent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		loaded, err := s.queue.WithTx(tx).Find(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		order = loaded
		if !offerable(order.FulfillmentStatus) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is no longer offerable")
		}

		if err := s.binder.BindOrderInTx(ctx, tx, agent.ID, order.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		newSeq := order.EventSeq + 1
		rows, err := s.orders.WithTx(tx).UpdateStatusCAS(ctx, order.ID, order.FulfillmentStatus, map[string]any{
			"fulfillment_status": enums.FulfillmentStatusAccepted,
			"event_seq":          newSeq,
			"assignment_status":  enums.AssignmentStatusAccepted,
			"agent_id":           agent.ID,
			"assigned_at":        now,
			"accepted_at":        now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order")
		}
		if rows == 0 {
			// The bind above rolls back with the transaction.
			return pkgerrors.New(pkgerrors.CodeStaleState, "another agent accepted this order first")
		}

		payload, _ := json.Marshal(map[string]any{"agent_id": agent.ID.String()})
		event = &models.OrderEvent{
			OrderID:   order.ID,
			Seq:       newSeq,
			EventType: enums.EventOrderAccepted,
			ActorRole: enums.ActorRoleAgent,
			ActorID:   &agent.ID,
			Payload:   payload,
		}
		if err := s.orders.WithTx(tx).CreateEvent(ctx, event); err != nil {
			// A concurrent reject bumps event_seq without touching the
			// status, so the CAS can pass while our seq is already taken.
			if db.IsUniqueViolation(err, "ux_order_events_order_seq") {
				return pkgerrors.Wrap(pkgerrors.CodeStaleState, err, "event sequence already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append accept event")
		}

		order.FulfillmentStatus = enums.FulfillmentStatusAccepted
		order.EventSeq = newSeq
		order.AssignmentStatus = enums.AssignmentStatusAccepted
		order.AgentID = &agent.ID
		order.AssignedAt = &now
		order.AcceptedAt = &now
		return nil
	})
	if err != nil {
		s.countDecision("accept", outcomeForError(err))
		return nil, err
	}

	s.countDecision("accept", metrics.OutcomeApplied)
	s.notifier.OrderEvent(ctx, order, event)
	return order, nil
}

func (s *service) Reject(ctx context.Context, agentID, orderID uuid.UUID, reason string) error {
	agent, err := s.lookup.GetAgent(ctx, agentID)
	if err != nil {
		return err
	}

	var order *models.Order
	var event *models.OrderEvent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		loaded, err := s.queue.WithTx(tx).Find(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		order = loaded
		if !offerable(order.FulfillmentStatus) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is no longer offerable")
		}

		// Status does not change on reject; only the sequence moves so the
		// event log stays totally ordered.
		newSeq := order.EventSeq + 1
		rows, err := s.orders.WithTx(tx).UpdateStatusCAS(ctx, order.ID, order.FulfillmentStatus, map[string]any{
			"event_seq":         newSeq,
			"assignment_status": enums.AssignmentStatusRejected,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record rejection")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStaleState, "order changed while rejecting")
		}

		payload, _ := json.Marshal(map[string]any{"agent_id": agent.ID.String(), "reason": reason})
		event = &models.OrderEvent{
			OrderID:   order.ID,
			Seq:       newSeq,
			EventType: enums.EventOrderRejected,
			ActorRole: enums.ActorRoleAgent,
			ActorID:   &agent.ID,
			Payload:   payload,
		}
		if err := s.orders.WithTx(tx).CreateEvent(ctx, event); err != nil {
			if db.IsUniqueViolation(err, "ux_order_events_order_seq") {
				return pkgerrors.Wrap(pkgerrors.CodeStaleState, err, "event sequence already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append reject event")
		}
		order.EventSeq = newSeq
		return nil
	})
	if err != nil {
		s.countDecision("reject", outcomeForError(err))
		return err
	}

	// Cool-down is advisory; the rejection itself is already durable.
	_ = s.cooldowns.MarkRejectCooldown(ctx, agent.ID.String(), orderID.String(), s.cfg.RejectCooldown)
	s.countDecision("reject", metrics.OutcomeApplied)
	s.notifier.OrderEvent(ctx, order, event)
	return nil
}

// offerable reports whether agents may still claim the order. Payment-cleared
// orders enter the queue immediately; a seller marking pickup readiness does
// not gate acceptance, it only signals the parcel is packed.
func offerable(status enums.FulfillmentStatus) bool {
	return status == enums.FulfillmentStatusPaymentCleared ||
		status == enums.FulfillmentStatusPickupReady
}

func (s *service) countDecision(decision, outcome string) {
	if s.meter == nil {
		return
	}
	s.meter.DispatchOffers.WithLabelValues(decision, outcome).Inc()
}

func outcomeForError(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeStaleState):
		return metrics.OutcomeStale
	case pkgerrors.HasCode(err, pkgerrors.CodeAgentBusy), pkgerrors.HasCode(err, pkgerrors.CodeConflict):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
