// Package domain holds the lead record, its field schema and the enum values
// shared by filtering, validation and the stores.
package domain

import "time"

// Lead sources.
const (
	SourceWebsite     = "website"
	SourceFacebookAds = "facebook_ads"
	SourceGoogleAds   = "google_ads"
	SourceReferral    = "referral"
	SourceEvents      = "events"
	SourceOther       = "other"
)

// Lead statuses.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusLost      = "lost"
	StatusWon       = "won"
)

// Sources lists legal source values in display order.
var Sources = []string{SourceWebsite, SourceFacebookAds, SourceGoogleAds, SourceReferral, SourceEvents, SourceOther}

// Statuses lists legal status values in display order.
var Statuses = []string{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}

// Defaults applied on create.
const (
	DefaultSource = SourceOther
	DefaultStatus = StatusNew
	MinScore      = 0
	MaxScore      = 100
)

// Lead is a prospective customer owned by a single user.
type Lead struct {
	ID             string
	OwnerID        string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        string
	City           string
	State          string
	Source         string
	Status         string
	Score          int
	LeadValue      float64
	LastActivityAt *time.Time
	IsQualified    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OptionalTime distinguishes an absent timestamp from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// LeadInput is a validated, normalized create or update payload. Nil fields
// were not supplied.
type LeadInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Company        *string
	City           *string
	State          *string
	Source         *string
	Status         *string
	Score          *int
	LeadValue      *float64
	LastActivityAt OptionalTime
	IsQualified    *bool
}

// Fields returns the names of the supplied fields in schema order.
func (in LeadInput) Fields() []string {
	fields := make([]string, 0, 13)
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(in.Email != nil, FieldEmail)
	add(in.Company != nil, FieldCompany)
	add(in.City != nil, FieldCity)
	add(in.FirstName != nil, FieldFirstName)
	add(in.LastName != nil, FieldLastName)
	add(in.Phone != nil, FieldPhone)
	add(in.State != nil, FieldState)
	add(in.Source != nil, FieldSource)
	add(in.Status != nil, FieldStatus)
	add(in.Score != nil, FieldScore)
	add(in.LeadValue != nil, FieldLeadValue)
	add(in.LastActivityAt.Set, FieldLastActivityAt)
	add(in.IsQualified != nil, FieldIsQualified)
	return fields
}

// IsEmpty reports whether no field was supplied.
func (in LeadInput) IsEmpty() bool {
	return len(in.Fields()) == 0
}

// NewLead builds a lead for ownerID from a create payload, applying defaults
// for every omitted optional field.
func NewLead(ownerID string, in LeadInput) Lead {
	lead := Lead{
		OwnerID: ownerID,
		Source:  DefaultSource,
		Status:  DefaultStatus,
	}
	lead.Apply(in)
	return lead
}

// Apply overwrites the supplied fields of in onto l.
func (l *Lead) Apply(in LeadInput) {
	setString(&l.FirstName, in.FirstName)
	setString(&l.LastName, in.LastName)
	setString(&l.Email, in.Email)
	setString(&l.Phone, in.Phone)
	setString(&l.Company, in.Company)
	setString(&l.City, in.City)
	setString(&l.State, in.State)
	setString(&l.Source, in.Source)
	setString(&l.Status, in.Status)
	if in.Score != nil {
		l.Score = *in.Score
	}
	if in.LeadValue != nil {
		l.LeadValue = *in.LeadValue
	}
	if in.LastActivityAt.Set {
		l.LastActivityAt = in.LastActivityAt.Value
	}
	if in.IsQualified != nil {
		l.IsQualified = *in.IsQualified
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
