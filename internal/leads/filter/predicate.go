package filter

import "time"

// Predicate is an owner-scoped conjunction of per-field conditions.
// Stores must AND every condition together with OwnerID equality.
type Predicate struct {
	OwnerID    string
	Conditions []Condition
}

// Condition is a single typed test against one lead field.
type Condition interface {
	FieldName() string
	isCondition()
}

// Lookup returns the condition for field, if one was parsed.
func (p Predicate) Lookup(field string) (Condition, bool) {
	for _, c := range p.Conditions {
		if c.FieldName() == field {
			return c, true
		}
	}
	return nil, false
}

// StringEquals matches the field exactly.
type StringEquals struct {
	Field string
	Value string
}

// StringContains matches a case-insensitive substring. Value is literal text,
// never a pattern.
type StringContains struct {
	Field string
	Value string
}

// EnumEquals matches one enum value.
type EnumEquals struct {
	Field string
	Value string
}

// EnumIn matches any of Values. Values is never empty.
type EnumIn struct {
	Field  string
	Values []string
}

// NumberEquals matches a number exactly.
type NumberEquals struct {
	Field string
	Value float64
}

// NumberRange bounds a number. Nil bounds are open; at least one is set.
type NumberRange struct {
	Field string
	Gt    *float64
	Gte   *float64
	Lt    *float64
	Lte   *float64
}

// TimeRange bounds a timestamp. Nil bounds are open; at least one is set.
type TimeRange struct {
	Field string
	Gt    *time.Time
	Gte   *time.Time
	Lt    *time.Time
	Lte   *time.Time
}

// BoolEquals matches a boolean.
type BoolEquals struct {
	Field string
	Value bool
}

func (c StringEquals) FieldName() string   { return c.Field }
func (c StringContains) FieldName() string { return c.Field }
func (c EnumEquals) FieldName() string     { return c.Field }
func (c EnumIn) FieldName() string         { return c.Field }
func (c NumberEquals) FieldName() string   { return c.Field }
func (c NumberRange) FieldName() string    { return c.Field }
func (c TimeRange) FieldName() string      { return c.Field }
func (c BoolEquals) FieldName() string     { return c.Field }

func (StringEquals) isCondition()   {}
func (StringContains) isCondition() {}
func (EnumEquals) isCondition()     {}
func (EnumIn) isCondition()         {}
func (NumberEquals) isCondition()   {}
func (NumberRange) isCondition()    {}
func (TimeRange) isCondition()      {}
func (BoolEquals) isCondition()     {}
