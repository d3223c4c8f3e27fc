package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/betagate/internal/app"
	"github.com/charlesng35/betagate/internal/database/testutil"
	"github.com/charlesng35/betagate/internal/middleware"
	"github.com/charlesng35/betagate/internal/security"
	"github.com/charlesng35/betagate/internal/services"
)

func newTestRouter(t *testing.T, gateCfg middleware.GateConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	invites, err := services.NewInviteService(db, services.WithInviteBaseURL("https://beta.example.com"))
	require.NoError(t, err)

	signup, err := services.NewSignupService(invites, services.SignupConfig{
		SignUpURL: "https://auth.example.com/api/auth/sign-up/email",
		Secret:    "gate-secret",
	})
	require.NoError(t, err)

	origins, err := security.NewOriginChecker("https://beta.example.com", nil)
	require.NoError(t, err)

	gate, err := middleware.NewGate(gateCfg)
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Server.BaseURL = "https://beta.example.com"
	cfg.Monitoring.Prometheus.Enabled = true

	router, err := NewRouter(cfg, invites, signup, origins, gate)
	require.NoError(t, err)
	return router
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, middleware.GateConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "betagate_")
}

func TestRouterGateBlocksSignupPath(t *testing.T) {
	router := newTestRouter(t, middleware.GateConfig{
		Enabled:    true,
		Secret:     "gate-secret",
		PathPrefix: "/sign-up/email",
	})

	// Missing header is denied before any route matching happens.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sign-up/email", strings.NewReader("{}")))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "FORBIDDEN")

	// Wrong secret is denied the same way.
	req := httptest.NewRequest(http.MethodPost, "/sign-up/email", strings.NewReader("{}"))
	req.Header.Set(middleware.BetaSignupHeader, "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// The matching secret passes the gate; the path itself has no handler
	// here, so the router answers 404 instead of 403.
	req = httptest.NewRequest(http.MethodPost, "/sign-up/email", strings.NewReader("{}"))
	req.Header.Set(middleware.BetaSignupHeader, "gate-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Paths outside the prefix are never gated.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/beta/check", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAnswersCORSPreflight(t *testing.T) {
	router := newTestRouter(t, middleware.GateConfig{})

	// No trusted origins configured, so cross-origin callers are allowed.
	req := httptest.NewRequest(http.MethodOptions, "/beta/check", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Beta-Signup")
}

func TestNewRouterRejectsMissingDependencies(t *testing.T) {
	_, err := NewRouter(nil, nil, nil, nil, nil)
	require.Error(t, err)
}
