package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bazarly/bazarly-backend/api/controllers"
	webhookcontrollers "github.com/bazarly/bazarly-backend/api/controllers/webhooks"
	"github.com/bazarly/bazarly-backend/api/middleware"
	"github.com/bazarly/bazarly-backend/internal/agents"
	"github.com/bazarly/bazarly-backend/internal/dispatch"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/internal/notifications"
	"github.com/bazarly/bazarly-backend/internal/verification"
	pkgauth "github.com/bazarly/bazarly-backend/pkg/auth"
	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	pkgredis "github.com/bazarly/bazarly-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         *pkgredis.Client
	Tokens        *pkgauth.TokenManager
	Metrics       *metrics.Metrics
	Fulfillment   fulfillment.Service
	Dispatch      dispatch.Service
	Verification  verification.Service
	Agents        agents.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var store pkgredis.IdempotencyStore
	if deps.Redis != nil {
		store = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.HTTPMetrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentWebhook(deps.Fulfillment, cfg.Payments, store, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Tokens, logg))
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole("buyer", logg)).Post("/", controllers.CreateOrder(deps.Fulfillment, logg))
			r.Get("/", controllers.ListMyOrders(deps.Fulfillment, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Fulfillment, logg))
			r.Get("/{orderID}/timeline", controllers.OrderTimeline(deps.Fulfillment, logg))
		})

		r.Route("/seller/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole("seller", logg))
			r.Post("/{orderID}/pickup-ready", controllers.SellerMarkPickupReady(deps.Fulfillment, logg))
			r.Post("/{orderID}/pickup-code", controllers.SellerIssuePickupCode(deps.Fulfillment, deps.Verification, logg))
		})

		r.Route("/agent", func(r chi.Router) {
			r.Use(middleware.RequireRole("agent", logg))
			r.Post("/register", controllers.AgentRegister(deps.Agents, logg))
			r.Get("/me", controllers.AgentProfile(deps.Agents, logg))
			r.Post("/presence", controllers.AgentSetOnline(deps.Agents, logg))
			r.Post("/availability", controllers.AgentSetAvailable(deps.Agents, logg))

			r.Route("/queue", func(r chi.Router) {
				r.Get("/", controllers.AgentQueue(deps.Dispatch, logg))
				r.Post("/{orderID}/accept", controllers.AgentAcceptOrder(deps.Dispatch, logg))
				r.Post("/{orderID}/reject", controllers.AgentRejectOrder(deps.Dispatch, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(deps.Fulfillment, logg))
				r.Post("/{orderID}/verify-pickup", controllers.AgentVerifyPickup(deps.Fulfillment, logg))
				r.Post("/{orderID}/start-delivery", controllers.AgentStartDelivery(deps.Fulfillment, logg))
				r.Post("/{orderID}/delivery-code", controllers.AgentIssueDeliveryCode(deps.Fulfillment, deps.Verification, logg))
				r.Post("/{orderID}/confirm-delivery", controllers.AgentConfirmDelivery(deps.Fulfillment, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/agents/online", controllers.AdminListOnlineAgents(deps.Agents, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Fulfillment, logg))
				r.Get("/{orderID}/timeline", controllers.AdminOrderTimeline(deps.Fulfillment, logg))
				r.Post("/{orderID}/cancel", controllers.AdminCancelOrder(deps.Fulfillment, logg))
				r.Post("/{orderID}/reassign", controllers.AdminReassignOrder(deps.Fulfillment, logg))
				r.Post("/{orderID}/reconcile-payment", controllers.AdminReconcilePayment(deps.Fulfillment, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
