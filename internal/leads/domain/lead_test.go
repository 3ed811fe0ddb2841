package domain

import (
	"testing"
	"time"
)

func TestNewLeadAppliesDefaults(t *testing.T) {
	email := "jane@example.com"

	lead := NewLead("owner-1", LeadInput{Email: &email})

	if lead.OwnerID != "owner-1" || lead.Email != email {
		t.Fatalf("unexpected identity fields %+v", lead)
	}
	if lead.Source != SourceOther || lead.Status != StatusNew {
		t.Fatalf("expected default enums, got %q/%q", lead.Source, lead.Status)
	}
	if lead.Score != 0 || lead.LeadValue != 0 || lead.IsQualified || lead.LastActivityAt != nil {
		t.Fatalf("expected zero defaults, got %+v", lead)
	}
}

func TestApplyOnlyTouchesSuppliedFields(t *testing.T) {
	seen := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	lead := Lead{Company: "Acme", Score: 40, LastActivityAt: &seen}
	score := 90

	lead.Apply(LeadInput{Score: &score})

	if lead.Score != 90 || lead.Company != "Acme" || lead.LastActivityAt == nil {
		t.Fatalf("unexpected lead after apply %+v", lead)
	}

	lead.Apply(LeadInput{LastActivityAt: OptionalTime{Set: true}})
	if lead.LastActivityAt != nil {
		t.Fatal("explicit null should clear last_activity_at")
	}
}

func TestLeadInputFields(t *testing.T) {
	status := StatusWon
	qualified := true

	in := LeadInput{Status: &status, IsQualified: &qualified, LastActivityAt: OptionalTime{Set: true}}

	fields := in.Fields()
	if len(fields) != 3 || fields[0] != FieldStatus || fields[1] != FieldLastActivityAt || fields[2] != FieldIsQualified {
		t.Fatalf("unexpected fields %v", fields)
	}
	if in.IsEmpty() || !(LeadInput{}).IsEmpty() {
		t.Fatal("IsEmpty mismatch")
	}
}

func TestEmailFieldNormalizes(t *testing.T) {
	email, _ := Lookup(FieldEmail)
	if got := email.Normalized("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
	city, _ := Lookup(FieldCity)
	if got := city.Normalized(" Berlin "); got != " Berlin " {
		t.Fatalf("fields without a normalizer must be unchanged, got %q", got)
	}
}

func TestSchemaLookups(t *testing.T) {
	f, ok := Lookup(FieldSource)
	if !ok || f.Kind != KindEnum || len(f.Values) != len(Sources) {
		t.Fatalf("unexpected source field %+v", f)
	}
	if Writable(FieldCreatedAt) || !Writable(FieldScore) || Writable(FieldOwnerID) {
		t.Fatal("unexpected writable set")
	}
	if !Sortable(FieldUpdatedAt) || !Sortable(FieldCreatedAt) || Sortable(FieldOwnerID) || Sortable("password") {
		t.Fatal("unexpected sortable set")
	}
}
