package agents

import (
	"context"
	"testing"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubAgentsRepo struct {
	agent       *models.DeliveryAgent
	lastUpdates map[string]any
	bindRows    int64
	bound       *uuid.UUID
	released    bool
}

func (s *stubAgentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAgentsRepo) Create(_ context.Context, agent *models.DeliveryAgent) (*models.DeliveryAgent, error) {
	s.agent = agent
	return agent, nil
}

func (s *stubAgentsRepo) Find(_ context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error) {
	if s.agent == nil || s.agent.ID != agentID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.agent
	return &copied, nil
}

func (s *stubAgentsRepo) Update(_ context.Context, _ uuid.UUID, updates map[string]any) error {
	s.lastUpdates = updates
	return nil
}

func (s *stubAgentsRepo) BindOrder(_ context.Context, _, orderID uuid.UUID) (int64, error) {
	if s.bindRows > 0 {
		s.bound = &orderID
	}
	return s.bindRows, nil
}

func (s *stubAgentsRepo) ReleaseOrder(_ context.Context, _ uuid.UUID) error {
	s.released = true
	return nil
}

func (s *stubAgentsRepo) ListOnline(_ context.Context) ([]models.DeliveryAgent, error) {
	if s.agent == nil || !s.agent.IsOnline {
		return nil, nil
	}
	return []models.DeliveryAgent{*s.agent}, nil
}

func onlineAgent() *models.DeliveryAgent {
	return &models.DeliveryAgent{
		ID:          uuid.New(),
		Name:        "Ravi",
		Phone:       "+919900112233",
		IsOnline:    true,
		IsAvailable: true,
	}
}

func newAgentsService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return svc
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := newAgentsService(t, &stubAgentsRepo{})
	_, err := svc.Register(context.Background(), RegisterInput{ID: uuid.New(), Name: "Ravi"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetOnlineFalseClearsAvailability(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent()}
	svc := newAgentsService(t, repo)

	if err := svc.SetOnline(context.Background(), repo.agent.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastUpdates["is_online"] != false || repo.lastUpdates["is_available"] != false {
		t.Fatalf("expected both flags cleared, got %v", repo.lastUpdates)
	}
}

func TestSetAvailableRequiresOnline(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent()}
	repo.agent.IsOnline = false
	svc := newAgentsService(t, repo)

	err := svc.SetAvailable(context.Background(), repo.agent.ID, true)
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSetAvailableBusyAgent(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent()}
	active := uuid.New()
	repo.agent.CurrentOrderID = &active
	svc := newAgentsService(t, repo)

	err := svc.SetAvailable(context.Background(), repo.agent.ID, true)
	if !pkgerrors.HasCode(err, pkgerrors.CodeAgentBusy) {
		t.Fatalf("expected agent busy, got %v", err)
	}
	if repo.lastUpdates != nil {
		t.Fatalf("no update must be written for a busy agent, got %v", repo.lastUpdates)
	}
}

func TestSetAvailableFalseAllowedWhileBusy(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent()}
	active := uuid.New()
	repo.agent.CurrentOrderID = &active
	svc := newAgentsService(t, repo)

	if err := svc.SetAvailable(context.Background(), repo.agent.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastUpdates["is_available"] != false {
		t.Fatalf("expected availability cleared, got %v", repo.lastUpdates)
	}
}

func TestBindOrderClaimsSlot(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent(), bindRows: 1}
	svc := newAgentsService(t, repo)

	orderID := uuid.New()
	if err := svc.BindOrderInTx(context.Background(), nil, repo.agent.ID, orderID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.bound == nil || *repo.bound != orderID {
		t.Fatal("expected the slot to be claimed with the order id")
	}
}

func TestBindOrderBusyAgent(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent(), bindRows: 0}
	svc := newAgentsService(t, repo)

	err := svc.BindOrderInTx(context.Background(), nil, repo.agent.ID, uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeAgentBusy) {
		t.Fatalf("expected agent busy, got %v", err)
	}
}

func TestReleaseFreesSlot(t *testing.T) {
	repo := &stubAgentsRepo{agent: onlineAgent()}
	svc := newAgentsService(t, repo)

	if err := svc.ReleaseInTx(context.Background(), nil, repo.agent.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.released {
		t.Fatal("expected slot release")
	}
}

func TestCanReceiveOffers(t *testing.T) {
	agent := onlineAgent()
	if !agent.CanReceiveOffers() {
		t.Fatal("online available agent with free slot must receive offers")
	}
	busy := uuid.New()
	agent.CurrentOrderID = &busy
	if agent.CanReceiveOffers() {
		t.Fatal("agent with an active order must not receive offers")
	}
}
