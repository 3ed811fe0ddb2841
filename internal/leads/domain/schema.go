package domain

import "strings"

// FieldKind is the semantic type of a lead field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindEnum
	KindNumber
	KindDate
	KindBoolean
)

// Field describes one filterable or writable lead field.
type Field struct {
	Name   string
	Kind   FieldKind
	Values []string // legal values for enum fields

	// Normalize, when set, is applied to stored values and to equality
	// filter values alike.
	Normalize func(string) string
}

// Normalized returns value as the field stores it.
func (f Field) Normalized(value string) string {
	if f.Normalize == nil {
		return value
	}
	return f.Normalize(value)
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Field names as stored and exposed over HTTP.
const (
	FieldID             = "id"
	FieldOwnerID        = "owner_id"
	FieldFirstName      = "first_name"
	FieldLastName       = "last_name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldCompany        = "company"
	FieldCity           = "city"
	FieldState          = "state"
	FieldSource         = "source"
	FieldStatus         = "status"
	FieldScore          = "score"
	FieldLeadValue      = "lead_value"
	FieldLastActivityAt = "last_activity_at"
	FieldIsQualified    = "is_qualified"
	FieldCreatedAt      = "created_at"
	FieldUpdatedAt      = "updated_at"
)

// Schema lists the lead fields in a fixed order. created_at is filterable
// but never writable, see Writable.
var Schema = []Field{
	{Name: FieldEmail, Kind: KindString, Normalize: NormalizeEmail},
	{Name: FieldCompany, Kind: KindString},
	{Name: FieldCity, Kind: KindString},
	{Name: FieldFirstName, Kind: KindString},
	{Name: FieldLastName, Kind: KindString},
	{Name: FieldPhone, Kind: KindString},
	{Name: FieldState, Kind: KindString},
	{Name: FieldSource, Kind: KindEnum, Values: Sources},
	{Name: FieldStatus, Kind: KindEnum, Values: Statuses},
	{Name: FieldScore, Kind: KindNumber},
	{Name: FieldLeadValue, Kind: KindNumber},
	{Name: FieldCreatedAt, Kind: KindDate},
	{Name: FieldLastActivityAt, Kind: KindDate},
	{Name: FieldIsQualified, Kind: KindBoolean},
}

var schemaByName = func() map[string]Field {
	m := make(map[string]Field, len(Schema))
	for _, f := range Schema {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the schema entry for name.
func Lookup(name string) (Field, bool) {
	f, ok := schemaByName[name]
	return f, ok
}

// Writable reports whether clients may set the field on create or update.
func Writable(name string) bool {
	if name == FieldCreatedAt {
		return false
	}
	_, ok := schemaByName[name]
	return ok
}

// Sortable reports whether listings may be ordered by the field.
func Sortable(name string) bool {
	if name == FieldUpdatedAt {
		return true
	}
	_, ok := schemaByName[name]
	return ok
}
