// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"
	"net/http"

	"lead_management_backend/internal/events"
	"lead_management_backend/platform/config"
	"lead_management_backend/platform/httpkit"
	"lead_management_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.SessionConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MetricsProvider records request metrics and serves the scrape endpoint.
type MetricsProvider interface {
	httpkit.HTTPRecorder
	Handler() http.Handler
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and session settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., store ping).
	Health HealthChecker
	// Metrics is optional; without it no /metrics route is mounted.
	Metrics MetricsProvider
	// Revocations is optional; without it revoked sessions are not checked.
	Revocations httpkit.RevocationChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
