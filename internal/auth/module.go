// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"lead_management_backend/internal/auth/handler"
	"lead_management_backend/internal/auth/repository"
	"lead_management_backend/internal/auth/service"
	apphttp "lead_management_backend/internal/http"
	"lead_management_backend/platform/config"
	"lead_management_backend/platform/logger"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module with all its dependencies.
// revoker and recorder may be nil.
func NewModule(users repository.UserStore, revoker service.Revoker, cfg config.SessionConfig, recorder service.EventRecorder, log *logger.Logger) *Module {
	svc := service.New(users, revoker, cfg, recorder, log)
	h := handler.New(svc, cfg)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.Public.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
