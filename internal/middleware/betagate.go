package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/betagate/pkg/errors"
	"github.com/charlesng35/betagate/pkg/metrics"
	"github.com/charlesng35/betagate/pkg/response"
)

// BetaSignupHeader carries the shared gating secret on registration calls.
const BetaSignupHeader = "X-Beta-Signup"

// GateConfig configures the registration gate.
type GateConfig struct {
	// Enabled toggles gating. When false every request passes.
	Enabled bool
	// Secret is the shared credential expected in the X-Beta-Signup header.
	Secret string
	// PathPrefix scopes the gate to the account-creation path.
	PathPrefix string
}

// Gate decides whether a registration request may proceed.
type Gate struct {
	cfg GateConfig
}

// NewGate validates the configuration and returns a Gate. Enabling the gate
// without a secret is a refused misconfiguration: it would otherwise fail
// open for clients sending an empty header.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("GATE_MISCONFIGURED", "beta gating is enabled but no signup secret is configured", 500)
	}
	return &Gate{cfg: cfg}, nil
}

// Authorize checks the presented secret against the configured one.
func (g *Gate) Authorize(presented string) error {
	if !g.cfg.Enabled {
		return nil
	}
	// Force-deny when no secret is configured; NewGate rejects this state,
	// but a zero-value Gate must still be safe.
	if g.cfg.Secret == "" {
		return errors.ErrBetaAccessRequired
	}
	if presented == "" {
		return errors.ErrBetaAccessRequired
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(g.cfg.Secret)) != 1 {
		return errors.ErrBetaAccessRequired
	}
	return nil
}

// Handler returns gin middleware enforcing the gate on every request whose
// path starts with the configured account-creation prefix.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.cfg.PathPrefix == "" || !strings.HasPrefix(c.Request.URL.Path, g.cfg.PathPrefix) {
			c.Next()
			return
		}

		if err := g.Authorize(c.GetHeader(BetaSignupHeader)); err != nil {
			metrics.GateDecisions.WithLabelValues("deny").Inc()
			response.Error(c, err)
			c.Abort()
			return
		}

		metrics.GateDecisions.WithLabelValues("allow").Inc()
		c.Next()
	}
}
