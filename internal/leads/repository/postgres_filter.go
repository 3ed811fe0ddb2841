package repository

import (
	"fmt"
	"strings"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/internal/leads/filter"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildLeadWhere renders pred as a parameterised WHERE clause. The owner
// scope is always $1.
func buildLeadWhere(pred filter.Predicate) (string, []interface{}) {
	whereClauses := []string{"owner_id = $1"}
	args := []interface{}{pred.OwnerID}
	argIdx := 2

	add := func(column, op string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s %s $%d", column, op, argIdx))
		args = append(args, value)
		argIdx++
	}
	// score is an integer column; keep fractional bounds exact.
	addNumber := func(column, op string, value float64) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s %s $%d::double precision", column, op, argIdx))
		args = append(args, value)
		argIdx++
	}

	for _, cond := range pred.Conditions {
		if _, known := domain.Lookup(cond.FieldName()); !known {
			continue
		}
		switch c := cond.(type) {
		case filter.StringEquals:
			add(c.Field, "=", c.Value)
		case filter.StringContains:
			whereClauses = append(whereClauses, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, c.Field, argIdx))
			args = append(args, "%"+likeEscaper.Replace(c.Value)+"%")
			argIdx++
		case filter.EnumEquals:
			add(c.Field, "=", c.Value)
		case filter.EnumIn:
			whereClauses = append(whereClauses, fmt.Sprintf("%s = ANY($%d)", c.Field, argIdx))
			args = append(args, c.Values)
			argIdx++
		case filter.NumberEquals:
			addNumber(c.Field, "=", c.Value)
		case filter.NumberRange:
			if c.Gt != nil {
				addNumber(c.Field, ">", *c.Gt)
			}
			if c.Gte != nil {
				addNumber(c.Field, ">=", *c.Gte)
			}
			if c.Lt != nil {
				addNumber(c.Field, "<", *c.Lt)
			}
			if c.Lte != nil {
				addNumber(c.Field, "<=", *c.Lte)
			}
		case filter.TimeRange:
			if c.Gt != nil {
				add(c.Field, ">", *c.Gt)
			}
			if c.Gte != nil {
				add(c.Field, ">=", *c.Gte)
			}
			if c.Lt != nil {
				add(c.Field, "<", *c.Lt)
			}
			if c.Lte != nil {
				add(c.Field, "<=", *c.Lte)
			}
		case filter.BoolEquals:
			add(c.Field, "=", c.Value)
		}
	}

	return strings.Join(whereClauses, " AND "), args
}
