// Package v1 exposes the HTTP API: the chat endpoint, the WhatsApp inbound
// webhook, and operational endpoints.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inaratravel/concierge/internal/observability"
	"github.com/inaratravel/concierge/internal/profile"
	"github.com/inaratravel/concierge/plugin/ai/dispatch"
	"github.com/inaratravel/concierge/server/middleware"
	"github.com/inaratravel/concierge/server/service/chat"
	"github.com/inaratravel/concierge/store"
)

// APIV1Service bundles the dependencies of the v1 routes.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Engine  *chat.Engine
	Metrics *observability.Metrics

	// Notifier replies to inbound WhatsApp messages. Nil disables replies;
	// the webhook still processes the turn.
	Notifier dispatch.Notifier

	limiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 route group service.
func NewAPIV1Service(profile *profile.Profile, st *store.Store, engine *chat.Engine, metrics *observability.Metrics, notifier dispatch.Notifier) *APIV1Service {
	return &APIV1Service{
		Profile:  profile,
		Store:    st,
		Engine:   engine,
		Metrics:  metrics,
		Notifier: notifier,
		limiter:  middleware.NewRateLimiter(time.Second, 5),
	}
}

// Register mounts all v1 routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealthz)

	apiV1 := e.Group("/api/v1")
	apiV1.POST("/chat", s.handleChat)
	apiV1.GET("/metrics", s.handleMetrics)

	e.POST("/webhooks/whatsapp", s.handleWhatsAppWebhook)
}

func (s *APIV1Service) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
	})
}

func (s *APIV1Service) handleMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
