package repository

import (
	"context"
	"errors"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"
)

var (
	// ErrNotFound is returned when no lead with the id exists for the owner.
	ErrNotFound = errors.New("lead not found")
	// ErrDuplicateEmail is returned when the owner already has a lead with the email.
	ErrDuplicateEmail = errors.New("lead email already exists for owner")
)

// SortSpec orders a listing. Field must be sortable per domain.Sortable.
type SortSpec struct {
	Field string
	Desc  bool
}

// ListQuery selects one page of leads.
type ListQuery struct {
	Predicate filter.Predicate
	Sort      SortSpec
	Skip      int
	Limit     int
}

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only, owner-scoped access to leads.
type LeadReader interface {
	// ValidID reports whether id is well-formed for this store.
	ValidID(id string) bool
	GetByID(ctx context.Context, id, ownerID string) (domain.Lead, error)
	Count(ctx context.Context, pred filter.Predicate) (int64, error)
	Find(ctx context.Context, q ListQuery) ([]domain.Lead, error)
}

// LeadWriter provides owner-scoped mutations.
type LeadWriter interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	Update(ctx context.Context, id, ownerID string, in domain.LeadInput) (domain.Lead, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// LeadStore is the full lead persistence contract, implemented by
// PostgresStore and MongoStore.
type LeadStore interface {
	LeadReader
	LeadWriter
}

// sortColumn returns the column for a sortable field, defaulting to created_at.
func sortColumn(field string) string {
	if domain.Sortable(field) {
		return field
	}
	return domain.FieldCreatedAt
}
