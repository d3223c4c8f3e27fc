package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/betagate/internal/models"
	appErrors "github.com/charlesng35/betagate/pkg/errors"
	"github.com/charlesng35/betagate/pkg/logger"
	"github.com/charlesng35/betagate/pkg/metrics"
)

const defaultCodeLength = 32

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to build emailed invite links.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithCodeGenerator injects a custom code generation strategy.
func WithCodeGenerator(gen CodeGenerator) InviteOption {
	return func(s *InviteService) {
		if gen != nil {
			s.generator = gen
		}
	}
}

// WithInviteSender injects the notification delivery strategy.
func WithInviteSender(sender InviteSender) InviteOption {
	return func(s *InviteService) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithFieldSchema registers caller-extensible fields validated at mint time.
func WithFieldSchema(schema FieldSchema) InviteOption {
	return func(s *InviteService) {
		s.schema = schema
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InviteService manages the lifecycle of beta invites: minting, revocation,
// code validation and redemption.
type InviteService struct {
	db        *gorm.DB
	sender    InviteSender
	generator CodeGenerator
	schema    FieldSchema
	baseURL   string
	now       func() time.Time
	log       *zap.Logger
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}

	service := &InviteService{
		db:        db,
		sender:    NoopSender{},
		generator: RandomCodeGenerator{Length: defaultCodeLength},
		now:       time.Now,
		log:       logger.WithModule("invites"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// MintInput describes one invite creation request.
type MintInput struct {
	Email        string
	Wildcard     bool
	GoldenTicket bool
	RedirectTo   string
	Extra        map[string]any
}

// Mint creates a new invite and, for email-bound non-golden-ticket invites,
// hands the invite link to the configured sender. Delivery failures are
// logged, never returned: the created record stands regardless.
func (s *InviteService) Mint(ctx context.Context, in MintInput) (*models.BetaInvite, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" && !in.Wildcard {
		return nil, appErrors.ErrInvalidRequest
	}

	if err := s.schema.Validate(in.Extra); err != nil {
		return nil, appErrors.NewBadRequest(err.Error())
	}

	code, err := s.generator.Generate(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invite service: generate code: %w", err)
	}

	invite := &models.BetaInvite{
		Code:         code,
		GoldenTicket: in.GoldenTicket,
		Wildcard:     in.Wildcard,
		AddedAt:      s.now().UTC(),
	}
	if email != "" {
		invite.Email = &email
	}
	if len(in.Extra) > 0 {
		invite.Extra = datatypes.JSONMap(in.Extra)
	}

	// The duplicate check and the insert share one transaction so concurrent
	// mints for the same email cannot both succeed.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if email != "" {
			var count int64
			if err := tx.Model(&models.BetaInvite{}).Where("email = ?", email).Count(&count).Error; err != nil {
				return fmt.Errorf("invite service: lookup email: %w", err)
			}
			if count > 0 {
				return appErrors.ErrDuplicateUser
			}
		}
		if err := tx.Create(invite).Error; err != nil {
			return fmt.Errorf("invite service: create invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := "email"
	if invite.Wildcard {
		kind = "wildcard"
	}
	metrics.InvitesMinted.WithLabelValues(kind).Inc()

	if invite.Email != nil && !invite.GoldenTicket {
		link := InviteLink{
			Email: email,
			URL:   s.inviteURL(code, in.RedirectTo),
			Code:  code,
		}
		if sendErr := s.sender.SendInviteLink(ctx, link); sendErr != nil {
			s.log.Warn("invite link delivery failed",
				zap.String("email", email),
				zap.Error(sendErr),
			)
		}
	}

	return invite, nil
}

// Revoke deletes the live invite for the given email.
func (s *InviteService) Revoke(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("invite service: email is required")
	}

	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.BetaInvite{})
	if res.Error != nil {
		return fmt.Errorf("invite service: delete invite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

// CodeStatus reports the outcome of a code existence check.
type CodeStatus struct {
	Found    bool
	Wildcard bool
}

// ValidateCode looks a code up without mutating anything. Unknown codes are
// not an error; storage failures propagate unmodified.
func (s *InviteService) ValidateCode(ctx context.Context, code string) (CodeStatus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CodeStatus{}, nil
	}

	var invite models.BetaInvite
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CodeStatus{}, nil
	}
	if err != nil {
		return CodeStatus{}, fmt.Errorf("invite service: find code: %w", err)
	}

	return CodeStatus{Found: true, Wildcard: invite.Wildcard}, nil
}

// Redeem resolves a code for the given email. An exact (email, code) match
// wins over a wildcard match on the same code string. Wildcard invites are
// deleted in the same transaction that matched them, consuming their single
// global use; email-bound invites are left intact.
func (s *InviteService) Redeem(ctx context.Context, email, code string) (*models.BetaInvite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if code == "" {
		metrics.Redemptions.WithLabelValues("invalid_code").Inc()
		return nil, appErrors.ErrInvalidCode
	}

	var matched models.BetaInvite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ? AND code = ?", email, code).First(&matched).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Where("code = ? AND wildcard = ?", code, true).First(&matched).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErrors.ErrInvalidCode
		}
		if err != nil {
			return fmt.Errorf("invite service: find invite: %w", err)
		}

		if matched.Wildcard {
			res := tx.Where("code = ?", code).Delete(&models.BetaInvite{})
			if res.Error != nil {
				return fmt.Errorf("invite service: consume wildcard: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Lost the race against a concurrent redemption.
				return appErrors.ErrInvalidCode
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidCode) {
			metrics.Redemptions.WithLabelValues("invalid_code").Inc()
		} else {
			metrics.Redemptions.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.Redemptions.WithLabelValues("success").Inc()
	return &matched, nil
}

func (s *InviteService) inviteURL(code, redirectTo string) string {
	return fmt.Sprintf("%s/beta/sign-up/%s?callbackURL=%s", s.baseURL, code, url.QueryEscape(redirectTo))
}
