package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/betagate/internal/app"
	"github.com/charlesng35/betagate/internal/database"
	"github.com/charlesng35/betagate/internal/middleware"
	"github.com/charlesng35/betagate/internal/security"
	"github.com/charlesng35/betagate/internal/services"
	"github.com/charlesng35/betagate/pkg/mail"
)

// dependencies holds the wired service graph.
type dependencies struct {
	db      *gorm.DB
	invites *services.InviteService
	signup  *services.SignupService
	origins *security.OriginChecker
	gate    *middleware.Gate
}

func bootstrap(cfg *app.Config) (*dependencies, error) {
	dbSettings := cfg.DatabaseSettings()
	db, err := database.OpenAndMigrate(database.Config{
		Driver:   dbSettings.Driver,
		Path:     dbSettings.Path,
		DSN:      dbSettings.DSN,
		Host:     dbSettings.Host,
		Port:     dbSettings.Port,
		Name:     dbSettings.Name,
		User:     dbSettings.User,
		Password: dbSettings.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema, err := cfg.FieldSchema()
	if err != nil {
		return nil, err
	}

	smtp := cfg.SMTPSettings()
	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{
		Enabled:  smtp.Enabled,
		Host:     smtp.Host,
		Port:     smtp.Port,
		Username: smtp.Username,
		Password: smtp.Password,
		From:     smtp.From,
		UseTLS:   smtp.UseTLS,
		Timeout:  smtp.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	invites, err := services.NewInviteService(db,
		services.WithInviteBaseURL(cfg.Server.BaseURL),
		services.WithInviteSender(services.NewMailSender(mailer)),
		services.WithCodeGenerator(services.RandomCodeGenerator{Length: cfg.Beta.CodeLength}),
		services.WithFieldSchema(schema),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise invite service: %w", err)
	}

	signup, err := services.NewSignupService(invites, services.SignupConfig{
		SignUpURL: cfg.SignUpURL(),
		Secret:    cfg.Beta.SignupSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise signup service: %w", err)
	}

	origins, err := security.NewOriginChecker(cfg.Server.BaseURL, cfg.Beta.TrustedOrigins)
	if err != nil {
		return nil, fmt.Errorf("initialise origin checker: %w", err)
	}

	gate, err := middleware.NewGate(middleware.GateConfig{
		Enabled:    cfg.Beta.Enabled,
		Secret:     cfg.Beta.SignupSecret,
		PathPrefix: cfg.Beta.SignupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise gate: %w", err)
	}

	return &dependencies{
		db:      db,
		invites: invites,
		signup:  signup,
		origins: origins,
		gate:    gate,
	}, nil
}

func (d *dependencies) close(log *zap.Logger) {
	if d == nil || d.db == nil {
		return
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		if log != nil {
			log.Warn("database handle unavailable on shutdown", zap.Error(err))
		}
		return
	}
	if err := sqlDB.Close(); err != nil && log != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}
