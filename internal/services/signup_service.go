package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charlesng35/betagate/internal/models"
	appErrors "github.com/charlesng35/betagate/pkg/errors"
)

// BetaSignupHeader carries the gating secret on forwarded registration calls.
const BetaSignupHeader = "X-Beta-Signup"

const defaultForwardTimeout = 15 * time.Second

// SignupConfig configures the orchestrator's forwarding target.
type SignupConfig struct {
	// SignUpURL is the external account-creation endpoint.
	SignUpURL string
	// Secret is attached as the X-Beta-Signup header so the registration
	// gate in front of the endpoint admits the forwarded request.
	Secret string
	// Client overrides the HTTP client, primarily for tests.
	Client *http.Client
}

// SignupService glues invite redemption to the external registration
// mechanism: redeem the code, then forward the account-creation request with
// the gating secret attached.
type SignupService struct {
	invites   *InviteService
	client    *http.Client
	signUpURL string
	secret    string
}

// NewSignupService constructs the orchestrator.
func NewSignupService(invites *InviteService, cfg SignupConfig) (*SignupService, error) {
	if invites == nil {
		return nil, errors.New("signup service: invite service is required")
	}
	if cfg.SignUpURL == "" {
		return nil, errors.New("signup service: sign-up URL is required")
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultForwardTimeout}
	}

	return &SignupService{
		invites:   invites,
		client:    client,
		signUpURL: cfg.SignUpURL,
		secret:    cfg.Secret,
	}, nil
}

// SignupRequest is the account-creation payload plus the invite code.
type SignupRequest struct {
	Name     string
	Username string
	Email    string
	Password string
	Code     string
}

// ForwardedResponse relays the registration endpoint's reply verbatim.
type ForwardedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Redeem runs the end-to-end flow: validate and consume the code, then
// forward the registration request. The registration endpoint's response is
// returned untouched so the caller can relay it.
func (s *SignupService) Redeem(ctx context.Context, req SignupRequest) (*models.BetaInvite, *ForwardedResponse, error) {
	if req.Code == "" {
		return nil, nil, appErrors.ErrInvalidCode
	}

	invite, err := s.invites.Redeem(ctx, req.Email, req.Code)
	if err != nil {
		return nil, nil, err
	}

	forwarded, err := s.forward(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	return invite, forwarded, nil
}

func (s *SignupService) forward(ctx context.Context, req SignupRequest) (*ForwardedResponse, error) {
	payload, err := json.Marshal(map[string]any{
		"name":          req.Name,
		"username":      req.Username,
		"email":         req.Email,
		"password":      req.Password,
		"isEarlyAccess": true,
		"hasUsedTicket": "",
	})
	if err != nil {
		return nil, fmt.Errorf("signup service: encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.signUpURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("signup service: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(BetaSignupHeader, s.secret)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("signup service: forward registration: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("signup service: read response: %w", err)
	}

	return &ForwardedResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
