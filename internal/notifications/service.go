package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
	"github.com/bazarly/bazarly-backend/pkg/realtime"
	"github.com/google/uuid"
)

// RoomPublisher is the realtime surface the fan-out uses.
type RoomPublisher interface {
	Room(role enums.ActorRole, recipientID string) string
	AdminRoom() string
	PublishToRooms(ctx context.Context, event realtime.Event, rooms ...string)
}

// Service fans committed order events out to buyer, seller, agent, and admin
// rooms and maintains the in-app inbox.
type Service interface {
	// OrderEvent is called once per committed transition, after commit.
	// Delivery is best-effort at-most-once: failures are logged, never
	// retried, and never fail the transition that triggered them.
	OrderEvent(ctx context.Context, order *models.Order, event *models.OrderEvent)
	ListInbox(ctx context.Context, recipientID uuid.UUID, params pagination.Params) (*NotificationList, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type service struct {
	repo  Repository
	rooms RoomPublisher
	logg  *logger.Logger
	meter *metrics.Metrics
}

// NewService builds the notification fan-out service.
func NewService(repo Repository, rooms RoomPublisher, logg *logger.Logger, meter *metrics.Metrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if rooms == nil {
		return nil, fmt.Errorf("room publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, rooms: rooms, logg: logg, meter: meter}, nil
}

func (s *service) OrderEvent(ctx context.Context, order *models.Order, event *models.OrderEvent) {
	if order == nil || event == nil {
		return
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	title, message := describeEvent(order, event)
	rows := []models.Notification{
		inboxRow(order.BuyerID, enums.ActorRoleBuyer, order.ID, title, message),
		inboxRow(order.SellerID, enums.ActorRoleSeller, order.ID, title, message),
	}
	if order.AgentID != nil {
		rows = append(rows, inboxRow(*order.AgentID, enums.ActorRoleAgent, order.ID, title, message))
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("writing inbox rows: %v", err))
	}

	rooms := []string{
		s.rooms.Room(enums.ActorRoleBuyer, order.BuyerID.String()),
		s.rooms.Room(enums.ActorRoleSeller, order.SellerID.String()),
		s.rooms.AdminRoom(),
	}
	if order.AgentID != nil {
		rooms = append(rooms, s.rooms.Room(enums.ActorRoleAgent, order.AgentID.String()))
	}
	s.rooms.PublishToRooms(ctx, realtime.Event{
		Type:      event.EventType,
		OrderID:   order.ID.String(),
		Seq:       event.Seq,
		Status:    order.FulfillmentStatus,
		EmittedAt: time.Now().UTC(),
	}, rooms...)

	if s.meter != nil {
		s.meter.RealtimeEvents.WithLabelValues(event.EventType.String()).Inc()
	}
}

func (s *service) ListInbox(ctx context.Context, recipientID uuid.UUID, params pagination.Params) (*NotificationList, error) {
	if recipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	list, err := s.repo.ListByRecipient(ctx, recipientID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inbox")
	}
	return list, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	rows, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, recipientID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return nil
}

func (s *service) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}

func inboxRow(recipientID uuid.UUID, role enums.ActorRole, orderID uuid.UUID, title, message string) models.Notification {
	kind := enums.NotificationTypeOrderUpdate
	if role == enums.ActorRoleAgent {
		kind = enums.NotificationTypeDeliveryAlert
	}
	return models.Notification{
		RecipientID: recipientID,
		Role:        role,
		Type:        kind,
		Title:       title,
		Message:     message,
		OrderID:     &orderID,
	}
}

// describeEvent renders the human-readable inbox copy. Order numbers appear
// here because inbox rows are only written for parties already entitled to
// see them.
func describeEvent(order *models.Order, event *models.OrderEvent) (string, string) {
	ref := fmt.Sprintf("order #%d", order.OrderNumber)
	switch event.EventType {
	case enums.EventOrderCreated:
		return "Order placed", fmt.Sprintf("Your %s has been placed.", ref)
	case enums.EventOrderPaymentCleared:
		return "Payment received", fmt.Sprintf("Payment for %s is confirmed.", ref)
	case enums.EventOrderPickupReady:
		return "Ready for pickup", fmt.Sprintf("%s is packed and waiting for a delivery agent.", ref)
	case enums.EventOrderAccepted:
		return "Agent assigned", fmt.Sprintf("A delivery agent accepted %s.", ref)
	case enums.EventOrderRejected:
		return "Offer declined", fmt.Sprintf("An agent declined %s; it stays in the queue.", ref)
	case enums.EventOrderPickupVerified:
		return "Picked up", fmt.Sprintf("%s was picked up from the seller.", ref)
	case enums.EventOrderOutForDelivery:
		return "Out for delivery", fmt.Sprintf("%s is on its way.", ref)
	case enums.EventOrderDelivered:
		return "Delivered", fmt.Sprintf("%s was delivered.", ref)
	case enums.EventOrderCancelled:
		return "Order cancelled", fmt.Sprintf("%s was cancelled.", ref)
	case enums.EventOrderReassigned:
		return "Agent reassigned", fmt.Sprintf("%s was returned to the dispatch queue.", ref)
	default:
		return "Order update", fmt.Sprintf("%s was updated.", ref)
	}
}
