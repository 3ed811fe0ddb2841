// Package validation checks and normalizes lead create and update payloads.
//
// Payloads are flat JSON objects decoded into map[string]any. Fields outside
// the writable schema are dropped, every rule runs before returning, and the
// result is a fresh domain.LeadInput; the caller's map is never modified.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"lead_management_backend/internal/leads/domain"
	"lead_management_backend/platform/apperr"
	platformvalidator "lead_management_backend/platform/validator"

	"github.com/go-playground/validator/v10"
)

const emailTag = "lead_email"

// Same shape the UI checks: something@something.tld without whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Messages reported to clients.
const (
	msgEmailRequired   = "email is required"
	msgEmailInvalid    = "email must be a valid email address"
	msgScoreInvalid    = "score must be integer between 0 and 100"
	msgLeadValue       = "lead_value must be a number"
	msgLastActivity    = "last_activity_at must be a valid date or null"
	msgIsQualified     = "is_qualified must be boolean"
	msgNoUpdatableData = "At least one updatable field is required"
)

var (
	sourceRule = "oneof=" + strings.Join(domain.Sources, " ")
	statusRule = "oneof=" + strings.Join(domain.Statuses, " ")

	msgSourceInvalid = "source must be one of " + strings.Join(domain.Sources, ", ")
	msgStatusInvalid = "status must be one of " + strings.Join(domain.Statuses, ", ")
)

// Contact fields validated as plain trimmed strings, in report order.
var contactFields = []string{
	domain.FieldFirstName,
	domain.FieldLastName,
	domain.FieldPhone,
	domain.FieldCompany,
	domain.FieldCity,
	domain.FieldState,
}

type mode int

const (
	modeCreate mode = iota
	modeUpdate
)

// Validator validates lead payloads.
type Validator struct {
	v *platformvalidator.Validator
}

// New creates a lead Validator with the email rule registered.
func New() *Validator {
	v := platformvalidator.New()
	if err := v.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", emailTag, err))
	}
	return &Validator{v: v}
}

var defaultValidator = New()

// ValidateCreate validates a create payload with the default Validator.
func ValidateCreate(payload map[string]any) (domain.LeadInput, error) {
	return defaultValidator.ValidateCreate(payload)
}

// ValidateUpdate validates an update payload with the default Validator.
func ValidateUpdate(payload map[string]any) (domain.LeadInput, error) {
	return defaultValidator.ValidateUpdate(payload)
}

// ValidateCreate requires email; every other field is optional and a JSON
// null counts as omitted.
func (val *Validator) ValidateCreate(payload map[string]any) (domain.LeadInput, error) {
	return val.validate(payload, modeCreate)
}

// ValidateUpdate requires at least one writable field. Supplied fields follow
// the create rules, except that null clears text fields and last_activity_at
// and is rejected for the others.
func (val *Validator) ValidateUpdate(payload map[string]any) (domain.LeadInput, error) {
	if !hasWritableField(payload) {
		return domain.LeadInput{}, apperr.Validation([]string{msgNoUpdatableData})
	}
	return val.validate(payload, modeUpdate)
}

func (val *Validator) validate(payload map[string]any, m mode) (domain.LeadInput, error) {
	c := &collector{payload: payload, mode: m}
	var in domain.LeadInput

	in.Email = val.email(c)

	contacts := []**string{&in.FirstName, &in.LastName, &in.Phone, &in.Company, &in.City, &in.State}
	for i, field := range contactFields {
		*contacts[i] = c.text(field)
	}

	in.Source = val.enum(c, domain.FieldSource, sourceRule, msgSourceInvalid)
	in.Status = val.enum(c, domain.FieldStatus, statusRule, msgStatusInvalid)
	in.Score = score(c)
	in.LeadValue = leadValue(c)
	in.LastActivityAt = lastActivity(c)
	in.IsQualified = isQualified(c)

	if len(c.errors) > 0 {
		return domain.LeadInput{}, apperr.Validation(c.errors)
	}
	return in, nil
}

func (val *Validator) email(c *collector) *string {
	raw, present := c.payload[domain.FieldEmail]
	if c.mode == modeCreate {
		s, isString := raw.(string)
		if !present || raw == nil || (isString && strings.TrimSpace(s) == "") {
			c.fail(msgEmailRequired)
			return nil
		}
	}
	if !present {
		return nil
	}

	s, ok := raw.(string)
	if !ok {
		c.fail(msgEmailInvalid)
		return nil
	}
	email := domain.NormalizeEmail(s)
	if err := val.v.Var(email, "required,"+emailTag); err != nil {
		c.fail(msgEmailInvalid)
		return nil
	}
	return &email
}

func (val *Validator) enum(c *collector, field, rule, message string) *string {
	raw, present := c.value(field)
	if !present {
		return nil
	}
	s, ok := raw.(string)
	if !ok || val.v.Var(s, "required,"+rule) != nil {
		c.fail(message)
		return nil
	}
	return &s
}

func score(c *collector) *int {
	raw, present := c.value(domain.FieldScore)
	if !present {
		return nil
	}
	n, ok := toNumber(raw)
	if !ok || n != math.Trunc(n) || n < domain.MinScore || n > domain.MaxScore {
		c.fail(msgScoreInvalid)
		return nil
	}
	i := int(n)
	return &i
}

func leadValue(c *collector) *float64 {
	raw, present := c.value(domain.FieldLeadValue)
	if !present {
		return nil
	}
	n, ok := toNumber(raw)
	if !ok {
		c.fail(msgLeadValue)
		return nil
	}
	return &n
}

func lastActivity(c *collector) domain.OptionalTime {
	raw, present := c.payload[domain.FieldLastActivityAt]
	if !present {
		return domain.OptionalTime{}
	}
	if raw == nil {
		return domain.OptionalTime{Set: true}
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(msgLastActivity)
		return domain.OptionalTime{}
	}
	t, ok := domain.ParseTime(s)
	if !ok {
		c.fail(msgLastActivity)
		return domain.OptionalTime{}
	}
	return domain.OptionalTime{Set: true, Value: &t}
}

func isQualified(c *collector) *bool {
	raw, present := c.value(domain.FieldIsQualified)
	if !present {
		return nil
	}
	switch v := raw.(type) {
	case bool:
		return &v
	case string:
		switch strings.ToLower(v) {
		case "true":
			b := true
			return &b
		case "false":
			b := false
			return &b
		}
	}
	c.fail(msgIsQualified)
	return nil
}

// collector reads payload fields and accumulates error messages.
type collector struct {
	payload map[string]any
	mode    mode
	errors  []string
}

func (c *collector) fail(message string) {
	c.errors = append(c.errors, message)
}

// value returns the raw value of field. A null is treated as absent on create
// and handed on unchanged on update, where the field rule rejects it.
func (c *collector) value(field string) (any, bool) {
	raw, present := c.payload[field]
	if !present || (raw == nil && c.mode == modeCreate) {
		return nil, false
	}
	return raw, true
}

// text reads a free-form string field, trimmed. On update a null clears it.
func (c *collector) text(field string) *string {
	raw, present := c.payload[field]
	if !present {
		return nil
	}
	if raw == nil {
		if c.mode == modeCreate {
			return nil
		}
		empty := ""
		return &empty
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(field + " must be a string")
		return nil
	}
	trimmed := strings.TrimSpace(s)
	return &trimmed
}

func hasWritableField(payload map[string]any) bool {
	for key := range payload {
		if domain.Writable(key) {
			return true
		}
	}
	return false
}

// toNumber accepts JSON numbers and numeric strings. Booleans, blanks, NaN and
// infinities are rejected.
func toNumber(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
