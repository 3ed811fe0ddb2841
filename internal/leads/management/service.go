// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, deleting and listing an owner's leads.
package management

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"lead_management_backend/internal/events"
	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"
	"lead_management_backend/internal/leads/repository"
	"lead_management_backend/internal/leads/transport"
	"lead_management_backend/internal/leads/validation"
	"lead_management_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

// Listing bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*MaxLimit within an int.
	MaxPage = math.MaxInt/MaxLimit + 1
)

const (
	msgInvalidID            = "Invalid lead id"
	msgNotFound             = "Lead not found"
	msgDuplicateOnCreate    = "A lead with this email already exists"
	msgDuplicateOnUpdate    = "A lead with this email already exists for this user"
	defaultStoreCallTimeout = 10 * time.Second
)

// DefaultSort orders listings newest first.
var DefaultSort = repository.SortSpec{Field: domain.FieldCreatedAt, Desc: true}

// Service handles lead management operations (CRUD).
type Service struct {
	repo     repository.LeadStore
	eventBus events.Bus
	timeout  time.Duration
}

// New creates a new lead management service. Each store call is bounded by
// timeout; a non-positive timeout uses ten seconds.
func New(repo repository.LeadStore, eventBus events.Bus, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultStoreCallTimeout
	}
	return &Service{repo: repo, eventBus: eventBus, timeout: timeout}
}

// Create validates payload and stores a new lead for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, payload map[string]any) (transport.LeadResponse, error) {
	input, err := validation.ValidateCreate(payload)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lead, err := s.repo.Create(ctx, domain.NewLead(ownerID, input))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.LeadResponse{}, apperr.Conflict(msgDuplicateOnCreate)
		}
		return transport.LeadResponse{}, fmt.Errorf("create lead: %w", err)
	}

	s.publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		OwnerID:   ownerID,
		Source:    lead.Source,
	})

	return ToLeadResponse(lead), nil
}

// GetByID returns one of ownerID's leads.
func (s *Service) GetByID(ctx context.Context, ownerID, id string) (transport.LeadResponse, error) {
	if !s.repo.ValidID(id) {
		return transport.LeadResponse{}, apperr.BadRequest(msgInvalidID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lead, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return transport.LeadResponse{}, notFoundOr(err, "get lead")
	}
	return ToLeadResponse(lead), nil
}

// Update applies a partial update to one of ownerID's leads.
func (s *Service) Update(ctx context.Context, ownerID, id string, payload map[string]any) (transport.LeadResponse, error) {
	input, err := validation.ValidateUpdate(payload)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !s.repo.ValidID(id) {
		return transport.LeadResponse{}, apperr.BadRequest(msgInvalidID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lead, err := s.repo.Update(ctx, id, ownerID, input)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.LeadResponse{}, apperr.Conflict(msgDuplicateOnUpdate)
		}
		return transport.LeadResponse{}, notFoundOr(err, "update lead")
	}

	s.publish(ctx, events.LeadUpdated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		OwnerID:       ownerID,
		ChangedFields: input.Fields(),
	})

	return ToLeadResponse(lead), nil
}

// Delete permanently removes one of ownerID's leads.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (transport.DeleteLeadResponse, error) {
	if !s.repo.ValidID(id) {
		return transport.DeleteLeadResponse{}, apperr.BadRequest(msgInvalidID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return transport.DeleteLeadResponse{}, notFoundOr(err, "delete lead")
	}

	s.publish(ctx, events.LeadDeleted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		OwnerID:   ownerID,
	})

	return transport.DeleteLeadResponse{Success: true}, nil
}

// List returns one page of ownerID's leads matching the request filters.
func (s *Service) List(ctx context.Context, ownerID string, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	pred, err := filter.Parse(req.Filters, ownerID)
	if err != nil {
		return transport.LeadListResponse{}, fmt.Errorf("list leads: %w", err)
	}

	page := ParsePage(req.Page)
	limit := ParseLimit(req.Limit)
	query := repository.ListQuery{
		Predicate: pred,
		Sort:      ParseSort(req.Sort),
		Skip:      (page - 1) * limit,
		Limit:     limit,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		total int64
		leads []domain.Lead
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, pred)
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = s.repo.Find(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.LeadListResponse{}, fmt.Errorf("list leads: %w", err)
	}

	return transport.LeadListResponse{
		Data:       toLeadResponses(leads),
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

// ParsePage reads a 1-based page number. Missing or unparsable values give
// the first page; anything below 1 is raised to 1 and anything above
// MaxPage is lowered to MaxPage.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return DefaultPage
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// ParseLimit reads a page size. Missing or unparsable values give the
// default; the result is clamped to [1, MaxLimit].
func ParseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParseSort reads "field:direction". Direction "asc" sorts ascending and
// anything else descending. Unknown fields fall back to DefaultSort.
func ParseSort(raw string) repository.SortSpec {
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ":")
	field = strings.TrimSpace(field)
	if field == "" || !domain.Sortable(field) {
		return DefaultSort
	}
	return repository.SortSpec{Field: field, Desc: strings.TrimSpace(dir) != "asc"}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
