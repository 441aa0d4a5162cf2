package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages delivery agent registration, presence, and the one active
// order per agent invariant.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.DeliveryAgent, error)
	GetAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error)
	SetOnline(ctx context.Context, agentID uuid.UUID, online bool) error
	SetAvailable(ctx context.Context, agentID uuid.UUID, available bool) error
	ListOnline(ctx context.Context) ([]models.DeliveryAgent, error)
	// BindOrderInTx claims the agent's active-order slot as part of the
	// caller's transaction. Fails with AGENT_BUSY when the slot is taken or
	// the agent is not receiving offers.
	BindOrderInTx(ctx context.Context, tx *gorm.DB, agentID, orderID uuid.UUID) error
	// ReleaseInTx frees the slot so the agent can take the next order.
	ReleaseInTx(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) error
}

type service struct {
	repo Repository
}

// RegisterInput enrolls a new delivery agent.
type RegisterInput struct {
	ID    uuid.UUID
	Name  string
	Phone string
}

// NewService builds the agent registry service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.DeliveryAgent, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent phone required")
	}
	agent, err := s.repo.Create(ctx, &models.DeliveryAgent{
		ID:    input.ID,
		Name:  input.Name,
		Phone: input.Phone,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
	}
	return agent, nil
}

func (s *service) GetAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	agent, err := s.repo.Find(ctx, agentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}

func (s *service) SetOnline(ctx context.Context, agentID uuid.UUID, online bool) error {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return err
	}
	updates := map[string]any{"is_online": online}
	if !online {
		// Going offline also stops offers; the active order, if any, stays
		// with the agent until delivered or reassigned.
		updates["is_available"] = false
	}
	if err := s.repo.Update(ctx, agent.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent presence")
	}
	return nil
}

func (s *service) SetAvailable(ctx context.Context, agentID uuid.UUID, available bool) error {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if available && !agent.IsOnline {
		return pkgerrors.New(pkgerrors.CodeConflict, "agent must be online to become available")
	}
	if available && agent.CurrentOrderID != nil {
		return pkgerrors.New(pkgerrors.CodeAgentBusy, "agent already holds an active order")
	}
	if err := s.repo.Update(ctx, agent.ID, map[string]any{"is_available": available}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent availability")
	}
	return nil
}

func (s *service) ListOnline(ctx context.Context) ([]models.DeliveryAgent, error) {
	agents, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list online agents")
	}
	return agents, nil
}

func (s *service) BindOrderInTx(ctx context.Context, tx *gorm.DB, agentID, orderID uuid.UUID) error {
	rows, err := s.repo.WithTx(tx).BindOrder(ctx, agentID, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind order to agent")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeAgentBusy, "agent already has an active order or is not receiving offers")
	}
	return nil
}

func (s *service) ReleaseInTx(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) error {
	if err := s.repo.WithTx(tx).ReleaseOrder(ctx, agentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release agent order slot")
	}
	return nil
}
