// Package filter turns flat listing query parameters such as score_between=10,50
// or status_in=new,won into an owner-scoped Predicate.
//
// Parameters are named <field>_<operator>. Only the (field, operator) pairs in
// the table below are read; everything else is ignored. Malformed values never
// fail the parse: the affected bound, or the field, is simply left out.
package filter

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"lead_management_backend/internal/leads/domain"
)

// ErrMissingOwner is returned when Parse is called without an owner scope.
var ErrMissingOwner = errors.New("filter: owner id is required")

// Operators in precedence order per field kind. The first operator of each
// kind excludes the others when present.
var operatorsByKind = map[domain.FieldKind][]string{
	domain.KindString:  {"eq", "contains"},
	domain.KindEnum:    {"eq", "in"},
	domain.KindNumber:  {"eq", "gt", "lt", "between"},
	domain.KindDate:    {"on", "before", "after", "between"},
	domain.KindBoolean: {"eq"},
}

type builder func(field string, ops map[string]string) (Condition, bool)

var buildersByKind = map[domain.FieldKind]builder{
	domain.KindString:  buildString,
	domain.KindEnum:    buildEnum,
	domain.KindNumber:  buildNumber,
	domain.KindDate:    buildDate,
	domain.KindBoolean: buildBool,
}

// Parse builds the predicate for params, scoped to ownerID.
func Parse(params map[string]string, ownerID string) (Predicate, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Predicate{}, ErrMissingOwner
	}

	pred := Predicate{OwnerID: ownerID}
	for _, field := range domain.Schema {
		ops := make(map[string]string, 2)
		for _, op := range operatorsByKind[field.Kind] {
			if value, ok := params[field.Name+"_"+op]; ok {
				ops[op] = value
			}
		}
		if len(ops) == 0 {
			continue
		}
		if v, ok := ops["eq"]; ok {
			ops["eq"] = field.Normalized(v)
		}
		if cond, ok := buildersByKind[field.Kind](field.Name, ops); ok {
			pred.Conditions = append(pred.Conditions, cond)
		}
	}
	return pred, nil
}

// Params flattens query values, keeping the first value of repeated keys.
func Params(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

func buildString(field string, ops map[string]string) (Condition, bool) {
	if v, ok := ops["eq"]; ok {
		return StringEquals{Field: field, Value: v}, true
	}
	return StringContains{Field: field, Value: ops["contains"]}, true
}

func buildEnum(field string, ops map[string]string) (Condition, bool) {
	if v, ok := ops["eq"]; ok {
		return EnumEquals{Field: field, Value: v}, true
	}
	values := splitList(ops["in"])
	if len(values) == 0 {
		return nil, false
	}
	return EnumIn{Field: field, Values: values}, true
}

func buildNumber(field string, ops map[string]string) (Condition, bool) {
	if v, ok := ops["eq"]; ok {
		n, ok := parseNumber(v)
		if !ok {
			return nil, false
		}
		return NumberEquals{Field: field, Value: n}, true
	}

	r := NumberRange{Field: field}
	if v, ok := ops["gt"]; ok {
		r.Gt = numberPtr(v)
	}
	if v, ok := ops["lt"]; ok {
		r.Lt = numberPtr(v)
	}
	if v, ok := ops["between"]; ok {
		first, second := splitPair(v)
		r.Gte, r.Lte = orderedBounds(numberPtr(first), numberPtr(second), func(a, b float64) bool { return a > b })
	}
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil, false
	}
	return r, true
}

func buildDate(field string, ops map[string]string) (Condition, bool) {
	if v, ok := ops["on"]; ok {
		start, end, ok := dayBounds(v)
		if !ok {
			return nil, false
		}
		return TimeRange{Field: field, Gte: &start, Lte: &end}, true
	}

	r := TimeRange{Field: field}
	if v, ok := ops["after"]; ok {
		r.Gt = timePtr(v)
	}
	if v, ok := ops["before"]; ok {
		r.Lt = timePtr(v)
	}
	if v, ok := ops["between"]; ok {
		first, second := splitPair(v)
		r.Gte, r.Lte = orderedBounds(timePtr(first), timePtr(second), func(a, b time.Time) bool { return a.After(b) })
	}
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil, false
	}
	return r, true
}

func buildBool(field string, ops map[string]string) (Condition, bool) {
	b, ok := parseBool(ops["eq"])
	if !ok {
		return nil, false
	}
	return BoolEquals{Field: field, Value: b}, true
}

// orderedBounds turns the two components of a between value into inclusive
// lower and upper bounds. Reversed input is swapped. When only one component
// parsed, it keeps its position: first is the lower bound, second the upper.
func orderedBounds[T any](first, second *T, greater func(a, b T) bool) (lower, upper *T) {
	if first != nil && second != nil && greater(*first, *second) {
		return second, first
	}
	return first, second
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func splitPair(raw string) (string, string) {
	first, second, _ := strings.Cut(raw, ",")
	if i := strings.IndexByte(second, ','); i >= 0 {
		second = second[:i]
	}
	return strings.TrimSpace(first), strings.TrimSpace(second)
}
