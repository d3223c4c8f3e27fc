package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/betagate/internal/app"
	"github.com/charlesng35/betagate/internal/handlers"
	"github.com/charlesng35/betagate/internal/middleware"
	"github.com/charlesng35/betagate/internal/security"
	"github.com/charlesng35/betagate/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(
	cfg *app.Config,
	invites *services.InviteService,
	signup *services.SignupService,
	origins *security.OriginChecker,
	gate *middleware.Gate,
) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if invites == nil {
		return nil, fmt.Errorf("invite service must be provided")
	}
	if signup == nil {
		return nil, fmt.Errorf("signup service must be provided")
	}
	if origins == nil {
		return nil, fmt.Errorf("origin checker must be provided")
	}
	if gate == nil {
		return nil, fmt.Errorf("gate must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Beta.TrustedOrigins))
	r.Use(gate.Handler())

	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	registerBetaRoutes(r, handlers.NewBetaHandler(invites, signup, origins))

	return r, nil
}
