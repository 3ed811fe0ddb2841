// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"
	"time"

	"lead_management_backend/internal/events"
	apphttp "lead_management_backend/internal/http"
	"lead_management_backend/internal/leads/handler"
	"lead_management_backend/internal/leads/management"
	"lead_management_backend/internal/leads/repository"
	"lead_management_backend/platform/logger"
)

// EventRecorder counts lead lifecycle events.
type EventRecorder interface {
	IncLeadEvent(event string)
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module with all its dependencies.
// recorder may be nil.
func NewModule(store repository.LeadStore, eventBus events.Bus, recorder EventRecorder, storeTimeout time.Duration, log *logger.Logger) *Module {
	subscribeLeadEvents(eventBus, recorder, log)

	mgmtSvc := management.New(store, eventBus, storeTimeout)

	return &Module{handler: handler.New(mgmtSvc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// subscribeLeadEvents logs and counts every lead lifecycle event.
func subscribeLeadEvents(eventBus events.Bus, recorder EventRecorder, log *logger.Logger) {
	if eventBus == nil {
		return
	}

	handle := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		var leadID, ownerID string
		switch e := event.(type) {
		case events.LeadCreated:
			leadID, ownerID = e.LeadID, e.OwnerID
		case events.LeadUpdated:
			leadID, ownerID = e.LeadID, e.OwnerID
		case events.LeadDeleted:
			leadID, ownerID = e.LeadID, e.OwnerID
		default:
			return nil
		}

		if recorder != nil {
			recorder.IncLeadEvent(event.EventName())
		}
		if log != nil {
			log.WithContext(ctx).LeadEvent(event.EventName(), leadID, ownerID)
		}
		return nil
	})

	for _, name := range []string{
		events.LeadCreated{}.EventName(),
		events.LeadUpdated{}.EventName(),
		events.LeadDeleted{}.EventName(),
	} {
		eventBus.Subscribe(name, handle)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
