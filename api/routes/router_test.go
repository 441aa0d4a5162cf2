package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bazarly/bazarly-backend/internal/agents"
	"github.com/bazarly/bazarly-backend/internal/dispatch"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/internal/notifications"
	"github.com/bazarly/bazarly-backend/internal/verification"
	pkgauth "github.com/bazarly/bazarly-backend/pkg/auth"
	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubFulfillmentService struct{}

func (stubFulfillmentService) CreateOrder(context.Context, fulfillment.CreateOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubFulfillmentService) MarkPaymentCleared(context.Context, fulfillment.MarkPaymentClearedInput) error {
	return nil
}

func (stubFulfillmentService) ReconcilePayment(context.Context, uuid.UUID, string) error { return nil }

func (stubFulfillmentService) MarkPickupReady(context.Context, fulfillment.MarkPickupReadyInput) error {
	return nil
}

func (stubFulfillmentService) VerifyPickup(context.Context, fulfillment.VerifyPickupInput) error {
	return nil
}

func (stubFulfillmentService) StartDelivery(context.Context, fulfillment.StartDeliveryInput) error {
	return nil
}

func (stubFulfillmentService) ConfirmDelivery(context.Context, fulfillment.ConfirmDeliveryInput) error {
	return nil
}

func (stubFulfillmentService) Cancel(context.Context, fulfillment.CancelInput) error { return nil }

func (stubFulfillmentService) ForceReassign(context.Context, fulfillment.ForceReassignInput) error {
	return nil
}

func (stubFulfillmentService) GetOrder(context.Context, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubFulfillmentService) GetTimeline(context.Context, uuid.UUID) (*fulfillment.OrderTimeline, error) {
	return &fulfillment.OrderTimeline{}, nil
}

func (stubFulfillmentService) ListBuyerOrders(context.Context, uuid.UUID, pagination.Params) (*fulfillment.OrderList, error) {
	return &fulfillment.OrderList{}, nil
}

func (stubFulfillmentService) ListSellerOrders(context.Context, uuid.UUID, pagination.Params) (*fulfillment.OrderList, error) {
	return &fulfillment.OrderList{}, nil
}

func (stubFulfillmentService) ListAgentOrders(context.Context, uuid.UUID, pagination.Params) (*fulfillment.OrderList, error) {
	return &fulfillment.OrderList{}, nil
}

func (stubFulfillmentService) ListOrdersByStatus(context.Context, enums.FulfillmentStatus, pagination.Params) (*fulfillment.OrderList, error) {
	return &fulfillment.OrderList{}, nil
}

type stubDispatchService struct{}

func (stubDispatchService) ListEligible(context.Context, uuid.UUID, pagination.Params) ([]dispatch.QueueItem, error) {
	return nil, nil
}

func (stubDispatchService) Accept(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubDispatchService) Reject(context.Context, uuid.UUID, uuid.UUID, string) error { return nil }

type stubVerificationService struct{}

func (stubVerificationService) Issue(context.Context, verification.IssueInput) (*verification.IssueResult, error) {
	return &verification.IssueResult{}, nil
}

func (stubVerificationService) VerifyInTx(context.Context, *gorm.DB, uuid.UUID, enums.CodePurpose, string) error {
	return nil
}

func (stubVerificationService) CancelPendingInTx(context.Context, *gorm.DB, uuid.UUID) error {
	return nil
}

type stubAgentsService struct{}

func (stubAgentsService) Register(context.Context, agents.RegisterInput) (*models.DeliveryAgent, error) {
	return &models.DeliveryAgent{}, nil
}

func (stubAgentsService) GetAgent(context.Context, uuid.UUID) (*models.DeliveryAgent, error) {
	return &models.DeliveryAgent{}, nil
}

func (stubAgentsService) SetOnline(context.Context, uuid.UUID, bool) error    { return nil }
func (stubAgentsService) SetAvailable(context.Context, uuid.UUID, bool) error { return nil }

func (stubAgentsService) ListOnline(context.Context) ([]models.DeliveryAgent, error) {
	return nil, nil
}

func (stubAgentsService) BindOrderInTx(context.Context, *gorm.DB, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubAgentsService) ReleaseInTx(context.Context, *gorm.DB, uuid.UUID) error { return nil }

type stubNotificationsService struct{}

func (stubNotificationsService) OrderEvent(context.Context, *models.Order, *models.OrderEvent) {}

func (stubNotificationsService) ListInbox(context.Context, uuid.UUID, pagination.Params) (*notifications.NotificationList, error) {
	return &notifications.NotificationList{}, nil
}

func (stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) error         { return nil }
func (stubNotificationsService) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "bazarly-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            stubPinger{},
		Tokens:        pkgauth.NewTokenManager(cfg.JWT),
		Metrics:       metrics.New(),
		Fulfillment:   stubFulfillmentService{},
		Dispatch:      stubDispatchService{},
		Verification:  stubVerificationService{},
		Agents:        stubAgentsService{},
		Notifications: stubNotificationsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.NewTokenManager(cfg.JWT).Issue(uuid.NewString(), role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestHealthLiveNeedsNoAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAgentQueueRequiresAgentRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	buyer := httptest.NewRequest(http.MethodGet, "/api/v1/agent/queue", nil)
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, buyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodGet, "/api/v1/agent/queue", nil)
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAgent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	seller := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?status=created", nil)
	seller.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleSeller))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, seller)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for seller got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?status=created", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestNotificationsListWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	cfg := testConfig()
	cfg.Payments.WebhookSecret = "whsec"
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without signature headers got %d", resp.Code)
	}
}
