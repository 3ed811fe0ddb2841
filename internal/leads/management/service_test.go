package management

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"
	"lead_management_backend/internal/leads/repository"
	"lead_management_backend/internal/leads/transport"
	"lead_management_backend/platform/apperr"
)

const (
	ownerA = "owner-a"
	ownerB = "owner-b"
)

// memStore is an in-memory LeadStore. Listing honours the owner scope only.
type memStore struct {
	mu    sync.Mutex
	seq   int
	leads map[string]domain.Lead
	now   time.Time

	lastQuery repository.ListQuery
}

func newMemStore() *memStore {
	return &memStore{
		leads: make(map[string]domain.Lead),
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) ValidID(id string) bool {
	return strings.HasPrefix(id, "lead-")
}

func (s *memStore) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.leads {
		if existing.OwnerID == lead.OwnerID && existing.Email == lead.Email {
			return domain.Lead{}, repository.ErrDuplicateEmail
		}
	}
	s.seq++
	s.now = s.now.Add(time.Minute)
	lead.ID = fmt.Sprintf("lead-%03d", s.seq)
	lead.CreatedAt = s.now
	lead.UpdatedAt = s.now
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *memStore) GetByID(_ context.Context, id, ownerID string) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (s *memStore) Update(_ context.Context, id, ownerID string, in domain.LeadInput) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return domain.Lead{}, repository.ErrNotFound
	}
	if in.Email != nil {
		for otherID, other := range s.leads {
			if otherID != id && other.OwnerID == ownerID && other.Email == *in.Email {
				return domain.Lead{}, repository.ErrDuplicateEmail
			}
		}
	}
	lead.Apply(in)
	s.now = s.now.Add(time.Minute)
	lead.UpdatedAt = s.now
	s.leads[id] = lead
	return lead, nil
}

func (s *memStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *memStore) owned(ownerID string) []domain.Lead {
	var out []domain.Lead
	for _, lead := range s.leads {
		if lead.OwnerID == ownerID {
			out = append(out, lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) Count(_ context.Context, pred filter.Predicate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.owned(pred.OwnerID))), nil
}

func (s *memStore) Find(_ context.Context, q repository.ListQuery) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	leads := s.owned(q.Predicate.OwnerID)
	if q.Sort.Desc {
		for i, j := 0, len(leads)-1; i < j; i, j = i+1, j-1 {
			leads[i], leads[j] = leads[j], leads[i]
		}
	}
	if q.Skip >= len(leads) {
		return []domain.Lead{}, nil
	}
	end := q.Skip + q.Limit
	if end > len(leads) {
		end = len(leads)
	}
	return leads[q.Skip:end], nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return New(store, nil, time.Second), store
}

func seed(t *testing.T, svc *Service, ownerID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		payload := map[string]any{"email": fmt.Sprintf("lead%d@example.com", i)}
		if _, err := svc.Create(context.Background(), ownerID, payload); err != nil {
			t.Fatalf("seed lead %d: %v", i, err)
		}
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService()

	lead, err := svc.Create(context.Background(), ownerA, map[string]any{
		"email":      "  Jane@Example.com ",
		"first_name": " Jane ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %q", lead.Email)
	}
	if lead.FirstName != "Jane" {
		t.Fatalf("expected trimmed first name, got %q", lead.FirstName)
	}
	if lead.Source != domain.DefaultSource || lead.Status != domain.DefaultStatus {
		t.Fatalf("expected default source/status, got %q/%q", lead.Source, lead.Status)
	}
	if lead.Score != 0 || lead.LeadValue != 0 || lead.IsQualified || lead.LastActivityAt != nil {
		t.Fatalf("unexpected defaults: %+v", lead)
	}

	fetched, err := svc.GetByID(context.Background(), ownerA, lead.ID)
	if err != nil {
		t.Fatalf("get after create: %v", err)
	}
	if fetched.ID != lead.ID || fetched.Email != lead.Email {
		t.Fatalf("round trip mismatch: %+v vs %+v", fetched, lead)
	}
}

func TestCreateValidationError(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.Create(context.Background(), ownerA, map[string]any{"score": 101})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := apperr.ValidationDetails(err)
	if len(details) != 2 {
		t.Fatalf("expected email and score messages, got %v", details)
	}
	if len(store.leads) != 0 {
		t.Fatal("nothing should be stored on validation failure")
	}
}

func TestCreateDuplicateEmailPerOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	payload := map[string]any{"email": "dup@example.com"}

	if _, err := svc.Create(ctx, ownerA, payload); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, ownerB, payload); err != nil {
		t.Fatalf("same email for another owner should succeed: %v", err)
	}

	_, err := svc.Create(ctx, ownerA, map[string]any{"email": "DUP@example.com"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var appErr *apperr.Error
	if ok := asAppErr(err, &appErr); !ok || appErr.Message != msgDuplicateOnCreate {
		t.Fatalf("unexpected conflict message: %v", err)
	}
}

func TestUpdateConflictUsesUpdateMessage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, ownerA, map[string]any{"email": "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(ctx, ownerA, map[string]any{"email": "b@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, ownerA, second.ID, map[string]any{"email": "a@example.com"})
	var appErr *apperr.Error
	if !asAppErr(err, &appErr) || appErr.Kind != apperr.KindConflict || appErr.Message != msgDuplicateOnUpdate {
		t.Fatalf("expected update conflict, got %v", err)
	}
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerA, map[string]any{"email": "x@example.com", "company": "Acme"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, ownerA, created.ID, map[string]any{"status": "won", "company": nil})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusWon {
		t.Fatalf("expected status won, got %q", updated.Status)
	}
	if updated.Company != "" {
		t.Fatalf("expected company cleared, got %q", updated.Company)
	}
	if updated.Email != created.Email || updated.Source != created.Source {
		t.Fatal("unsupplied fields must be preserved")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("expected updated_at to advance")
	}
}

func TestUpdateValidatesBeforeID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), ownerA, "not-an-id", map[string]any{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error first, got %v", err)
	}

	_, err = svc.Update(context.Background(), ownerA, "not-an-id", map[string]any{"city": "Austin"})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for malformed id, got %v", err)
	}
}

func TestInvalidAndMissingIDs(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, ownerA, "bogus"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("get: expected bad request, got %v", err)
	}
	if _, err := svc.Delete(ctx, ownerA, "bogus"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("delete: expected bad request, got %v", err)
	}
	if _, err := svc.GetByID(ctx, ownerA, "lead-999"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if _, err := svc.Delete(ctx, ownerA, "lead-999"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestOwnerIsolation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	lead, err := svc.Create(ctx, ownerA, map[string]any{"email": "mine@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetByID(ctx, ownerB, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("foreign get should be not found, got %v", err)
	}
	if _, err := svc.Update(ctx, ownerB, lead.ID, map[string]any{"city": "Oslo"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("foreign update should be not found, got %v", err)
	}
	if _, err := svc.Delete(ctx, ownerB, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("foreign delete should be not found, got %v", err)
	}

	list, err := svc.List(ctx, ownerB, transport.ListLeadsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 0 || len(list.Data) != 0 {
		t.Fatalf("owner B should see nothing, got %+v", list)
	}

	res, err := svc.Delete(ctx, ownerA, lead.ID)
	if err != nil || !res.Success {
		t.Fatalf("owner delete failed: %v %+v", err, res)
	}
	if _, err := svc.GetByID(ctx, ownerA, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("deleted lead should be gone, got %v", err)
	}
}

func TestListPaginationEnvelope(t *testing.T) {
	svc, store := newTestService()
	seed(t, svc, ownerA, 45)

	list, err := svc.List(context.Background(), ownerA, transport.ListLeadsRequest{Page: "3", Limit: "20"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Page != 3 || list.Limit != 20 || list.Total != 45 || list.TotalPages != 3 {
		t.Fatalf("unexpected envelope %+v", list)
	}
	if len(list.Data) != 5 {
		t.Fatalf("expected 5 leads on last page, got %d", len(list.Data))
	}
	if store.lastQuery.Skip != 40 {
		t.Fatalf("expected skip 40, got %d", store.lastQuery.Skip)
	}

	beyond, err := svc.List(context.Background(), ownerA, transport.ListLeadsRequest{Page: "9"})
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond.Data) != 0 || beyond.Total != 45 {
		t.Fatalf("page past the end should be empty with full total, got %+v", beyond)
	}
}

func TestListClampsPageAndLimit(t *testing.T) {
	svc, store := newTestService()
	seed(t, svc, ownerA, 3)

	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 20},
		{"0", "500", 1, 100},
		{"-4", "0", 1, 1},
		{"abc", "xyz", 1, 20},
		{"2", "-10", 2, 1},
		{"9223372036854775807", "100", MaxPage, 100},
		{"99999999999999999999", "100", 1, 100},
	}
	for _, tc := range cases {
		list, err := svc.List(context.Background(), ownerA, transport.ListLeadsRequest{Page: tc.page, Limit: tc.limit})
		if err != nil {
			t.Fatal(err)
		}
		if list.Page != tc.wantPage || list.Limit != tc.wantLimit {
			t.Fatalf("page=%q limit=%q: got page %d limit %d", tc.page, tc.limit, list.Page, list.Limit)
		}
		if store.lastQuery.Skip < 0 {
			t.Fatalf("page=%q limit=%q: negative skip %d", tc.page, tc.limit, store.lastQuery.Skip)
		}
		if tc.wantPage == MaxPage && len(list.Data) != 0 {
			t.Fatalf("page=%q: expected empty page, got %d leads", tc.page, len(list.Data))
		}
	}
}

func TestListEmptyResult(t *testing.T) {
	svc, _ := newTestService()

	list, err := svc.List(context.Background(), ownerA, transport.ListLeadsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if list.Data == nil || len(list.Data) != 0 {
		t.Fatalf("expected empty non-nil data, got %#v", list.Data)
	}
	if list.Total != 0 || list.TotalPages != 0 {
		t.Fatalf("expected zero totals, got %+v", list)
	}
}

func TestListPassesSortAndFilters(t *testing.T) {
	svc, store := newTestService()
	seed(t, svc, ownerA, 2)

	_, err := svc.List(context.Background(), ownerA, transport.ListLeadsRequest{
		Sort:    "score:asc",
		Filters: map[string]string{"status_eq": "new", "unknown_eq": "x"},
	})
	if err != nil {
		t.Fatal(err)
	}
	q := store.lastQuery
	if q.Sort.Field != domain.FieldScore || q.Sort.Desc {
		t.Fatalf("unexpected sort %+v", q.Sort)
	}
	if q.Predicate.OwnerID != ownerA {
		t.Fatalf("expected owner scope, got %q", q.Predicate.OwnerID)
	}
	if len(q.Predicate.Conditions) != 1 {
		t.Fatalf("expected a single status condition, got %+v", q.Predicate.Conditions)
	}
}

func TestParseSort(t *testing.T) {
	cases := []struct {
		raw  string
		want repository.SortSpec
	}{
		{"", DefaultSort},
		{"score:asc", repository.SortSpec{Field: domain.FieldScore}},
		{"score:desc", repository.SortSpec{Field: domain.FieldScore, Desc: true}},
		{"score", repository.SortSpec{Field: domain.FieldScore, Desc: true}},
		{"score:ASC", repository.SortSpec{Field: domain.FieldScore, Desc: true}},
		{"updated_at:asc", repository.SortSpec{Field: domain.FieldUpdatedAt}},
		{"password:asc", DefaultSort},
		{"owner_id:asc", DefaultSort},
	}
	for _, tc := range cases {
		if got := ParseSort(tc.raw); got != tc.want {
			t.Fatalf("ParseSort(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func asAppErr(err error, target **apperr.Error) bool {
	return errors.As(err, target)
}
