package internal

import (
	"context"

	"inkwell/blog-api/internal/moderation"
	"inkwell/blog-api/internal/service"
	"inkwell/blog-api/pkg/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the handlers need, built once at startup
type Deps struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Sessions *security.SessionIssuer
	Tokens   *security.TokenCodec
	Gate     *moderation.Gate
	Notifier service.Notifier

	Auth      *service.AuthService
	Graph     *service.GraphService
	Reactions *service.ReactionService
	Posts     *service.PostService
	Verify    *service.VerificationService
	Admin     *service.AdminService

	// Stops background workers such as the token sweep
	Cancel context.CancelFunc
}

// NewDeps wires the services on top of an opened database
func NewDeps(db *gorm.DB, argon *security.ArgonHash, sessions *security.SessionIssuer, tokens *security.TokenCodec, gate *moderation.Gate, notifier service.Notifier, baseURL string) *Deps {
	graph := service.NewGraphService(db)

	return &Deps{
		DB:        db,
		Argon:     argon,
		Sessions:  sessions,
		Tokens:    tokens,
		Gate:      gate,
		Notifier:  notifier,
		Auth:      service.NewAuthService(db, argon, sessions, graph),
		Graph:     graph,
		Reactions: service.NewReactionService(db),
		Posts:     service.NewPostService(db, gate),
		Verify:    service.NewVerificationService(db, tokens, argon, notifier, baseURL),
		Admin:     service.NewAdminService(db),
	}
}

func (d *Deps) Close() error {
	if d.Cancel != nil {
		d.Cancel()
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	zap.L().Debug("Closing database")
	return sqlDB.Close()
}
