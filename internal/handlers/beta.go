package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/betagate/internal/security"
	"github.com/charlesng35/betagate/internal/services"
	appErrors "github.com/charlesng35/betagate/pkg/errors"
	"github.com/charlesng35/betagate/pkg/response"
)

// errInvalidToken marks failed browser confirmation flows; it is carried as a
// redirect query parameter, never a JSON error.
const errInvalidToken = "INVALID_TOKEN"

// BetaHandler exposes the invite lifecycle over HTTP.
type BetaHandler struct {
	invites *services.InviteService
	signup  *services.SignupService
	origins *security.OriginChecker
}

// NewBetaHandler wires the beta endpoints.
func NewBetaHandler(invites *services.InviteService, signup *services.SignupService, origins *security.OriginChecker) *BetaHandler {
	return &BetaHandler{
		invites: invites,
		signup:  signup,
		origins: origins,
	}
}

type addInviteRequest struct {
	Email        string         `json:"email" validate:"omitempty,email"`
	GoldenTicket bool           `json:"goldenTicket"`
	RedirectTo   string         `json:"redirectTo"`
	Wildcard     bool           `json:"wildcard"`
	Extra        map[string]any `json:"-"`
}

type removeInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"code"`
}

// AddUser mints a new invite.
//
// POST /beta/add-user
func (h *BetaHandler) AddUser(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return
	}

	req, ok := decodeAddInvite(c, raw)
	if !ok {
		return
	}

	invite, err := h.invites.Mint(c.Request.Context(), services.MintInput{
		Email:        req.Email,
		Wildcard:     req.Wildcard,
		GoldenTicket: req.GoldenTicket,
		RedirectTo:   req.RedirectTo,
		Extra:        req.Extra,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, invite)
}

// RemoveUser revokes the invite bound to an email.
//
// DELETE /beta/remove-user
func (h *BetaHandler) RemoveUser(c *gin.Context) {
	var req removeInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.invites.Revoke(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "beta access revoked."})
}

// SignUpCallback handles the link clicked from an invite email: it checks the
// code exists and bounces the browser to the caller-supplied page with the
// code attached. Every failure resolves to a redirect; the browser never sees
// a raw error.
//
// GET /beta/sign-up/:code?callbackURL=...
func (h *BetaHandler) SignUpCallback(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	callbackURL := strings.TrimSpace(c.Query("callbackURL"))

	if code == "" || callbackURL == "" {
		h.redirectError(c, callbackURL)
		return
	}

	status, err := h.invites.ValidateCode(c.Request.Context(), code)
	if err != nil || !status.Found {
		h.redirectError(c, callbackURL)
		return
	}

	target, resolveErr := h.origins.Resolve(callbackURL)
	if resolveErr != nil {
		// Untrusted callback: fall back to the service error page rather
		// than redirecting off-origin.
		h.redirectError(c, "")
		return
	}

	q := target.Query()
	q.Set("code", code)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// SignUp redeems a code and forwards the registration request to the
// external account-creation endpoint, relaying its response verbatim.
//
// POST /beta/sign-up[?code=...]
func (h *BetaHandler) SignUp(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	code := req.Code
	if code == "" {
		code = strings.TrimSpace(c.Query("code"))
	}
	if code == "" {
		response.Error(c, appErrors.ErrInvalidCode)
		return
	}

	_, forwarded, err := h.signup.Redeem(c.Request.Context(), services.SignupRequest{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Code:     code,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := forwarded.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(forwarded.StatusCode, contentType, forwarded.Body)
}

// Check reports whether a code exists. It never errors: unknown codes and
// storage failures both come back as status=false.
//
// GET /beta/check?code=...
func (h *BetaHandler) Check(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	status, err := h.invites.ValidateCode(c.Request.Context(), code)
	if err != nil || !status.Found {
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "wildcard": status.Wildcard})
}

// redirectError sends the browser to the callback URL (when usable) or the
// service error page, carrying error=INVALID_TOKEN.
func (h *BetaHandler) redirectError(c *gin.Context, callbackURL string) {
	var target *url.URL
	if callbackURL != "" {
		if resolved, err := h.origins.Resolve(callbackURL); err == nil {
			target = resolved
		}
	}
	if target == nil {
		errorPage := *h.origins.Base()
		errorPage.Path = strings.TrimRight(errorPage.Path, "/") + "/error"
		target = &errorPage
	}

	q := target.Query()
	q.Set("error", errInvalidToken)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// decodeAddInvite splits the known invite fields from caller-extensible ones.
func decodeAddInvite(c *gin.Context, raw map[string]json.RawMessage) (addInviteRequest, bool) {
	var req addInviteRequest
	known := map[string]any{
		"email":        &req.Email,
		"goldenTicket": &req.GoldenTicket,
		"redirectTo":   &req.RedirectTo,
		"wildcard":     &req.Wildcard,
	}

	for key, value := range raw {
		dest, ok := known[key]
		if !ok {
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
				return req, false
			}
			if req.Extra == nil {
				req.Extra = make(map[string]any)
			}
			req.Extra[key] = v
			continue
		}
		if err := json.Unmarshal(value, dest); err != nil {
			response.Error(c, appErrors.NewBadRequest("invalid field "+key))
			return req, false
		}
	}

	if !validateStructOrError(c, &req) {
		return req, false
	}
	return req, true
}
