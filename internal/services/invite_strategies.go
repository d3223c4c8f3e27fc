package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charlesng35/betagate/pkg/crypto"
	"github.com/charlesng35/betagate/pkg/mail"
)

// CodeGenerator produces redemption codes. The email the code will be bound
// to is passed for implementations that derive codes from it; the default
// generator ignores it.
type CodeGenerator interface {
	Generate(ctx context.Context, email string) (string, error)
}

// RandomCodeGenerator draws codes uniformly from upper- and lower-case Latin
// letters.
type RandomCodeGenerator struct {
	Length int
}

func (g RandomCodeGenerator) Generate(_ context.Context, _ string) (string, error) {
	length := g.Length
	if length <= 0 {
		length = defaultCodeLength
	}
	return crypto.GenerateCode(length)
}

// InviteLink is the payload handed to the delivery strategy.
type InviteLink struct {
	Email string
	URL   string
	Code  string
}

// InviteSender delivers invite links out-of-band. Implementations must not
// assume retries; the lifecycle manager fires once and moves on.
type InviteSender interface {
	SendInviteLink(ctx context.Context, link InviteLink) error
}

// NoopSender discards invite links. It is the default when no delivery
// mechanism is configured.
type NoopSender struct{}

func (NoopSender) SendInviteLink(context.Context, InviteLink) error { return nil }

type mailSender struct {
	mailer mail.Mailer
}

// NewMailSender wraps a Mailer as an InviteSender. A disabled SMTP backend is
// treated as successful delivery so environments without mail keep working.
func NewMailSender(mailer mail.Mailer) InviteSender {
	return &mailSender{mailer: mailer}
}

func (s *mailSender) SendInviteLink(ctx context.Context, link InviteLink) error {
	msg := mail.Message{
		To:      []string{link.Email},
		Subject: "You're invited to the beta",
		Body: fmt.Sprintf("Hello,\n\nYou have been granted beta access. Use the following link to sign up:\n%s\n\nYour invite code: %s\n\nIf you did not expect this email, you can ignore it.\n",
			link.URL, link.Code),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			return nil
		}
		return err
	}
	return nil
}
