package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const leadColumns = `id::text, owner_id, first_name, last_name, email, phone, company, city, state,
	source, status, score, lead_value, last_activity_at, is_qualified, created_at, updated_at`

// PostgresStore persists leads in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a lead store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ValidID reports whether id is a UUID.
func (r *PostgresStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresStore) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			owner_id, first_name, last_name, email, phone, company, city, state,
			source, status, score, lead_value, last_activity_at, is_qualified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+leadColumns,
		lead.OwnerID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Company, lead.City, lead.State,
		lead.Source, lead.Status, lead.Score, lead.LeadValue, lead.LastActivityAt, lead.IsQualified,
	)

	created, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, mapPgError(err)
	}
	return created, nil
}

func (r *PostgresStore) GetByID(ctx context.Context, id, ownerID string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1::uuid AND owner_id = $2
	`, id, ownerID)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, mapPgError(err)
	}
	return lead, nil
}

func (r *PostgresStore) Update(ctx context.Context, id, ownerID string, in domain.LeadInput) (domain.Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{in.FirstName != nil, domain.FieldFirstName, derefString(in.FirstName)},
		{in.LastName != nil, domain.FieldLastName, derefString(in.LastName)},
		{in.Email != nil, domain.FieldEmail, derefString(in.Email)},
		{in.Phone != nil, domain.FieldPhone, derefString(in.Phone)},
		{in.Company != nil, domain.FieldCompany, derefString(in.Company)},
		{in.City != nil, domain.FieldCity, derefString(in.City)},
		{in.State != nil, domain.FieldState, derefString(in.State)},
		{in.Source != nil, domain.FieldSource, derefString(in.Source)},
		{in.Status != nil, domain.FieldStatus, derefString(in.Status)},
		{in.Score != nil, domain.FieldScore, in.Score},
		{in.LeadValue != nil, domain.FieldLeadValue, in.LeadValue},
		{in.LastActivityAt.Set, domain.FieldLastActivityAt, in.LastActivityAt.Value},
		{in.IsQualified != nil, domain.FieldIsQualified, in.IsQualified},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, ownerID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d::uuid AND owner_id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, argIdx+1, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Lead{}, mapPgError(err)
	}
	return lead, nil
}

func (r *PostgresStore) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1::uuid AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStore) Count(ctx context.Context, pred filter.Predicate) (int64, error) {
	whereClause, args := buildLeadWhere(pred)

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+whereClause, args...).Scan(&total)
	return total, err
}

func (r *PostgresStore) Find(ctx context.Context, q ListQuery) ([]domain.Lead, error) {
	whereClause, args := buildLeadWhere(q.Predicate)
	argIdx := len(args) + 1

	sortOrder := "ASC"
	if q.Sort.Desc {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM leads
		WHERE %s
		ORDER BY %s %s, id %s
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, sortColumn(q.Sort.Field), sortOrder, sortOrder, argIdx, argIdx+1)
	args = append(args, q.Limit, q.Skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0, q.Limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID, &lead.OwnerID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&lead.Company, &lead.City, &lead.State, &lead.Source, &lead.Status, &lead.Score,
		&lead.LeadValue, &lead.LastActivityAt, &lead.IsQualified, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	if lead.LastActivityAt != nil {
		utc := lead.LastActivityAt.UTC()
		lead.LastActivityAt = &utc
	}
	lead.CreatedAt = lead.CreatedAt.UTC()
	lead.UpdatedAt = lead.UpdatedAt.UTC()
	return lead, nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
