package filter

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func mustParse(t *testing.T, params map[string]string) Predicate {
	t.Helper()
	pred, err := Parse(params, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.OwnerID != "u1" {
		t.Fatalf("expected owner scope u1, got %q", pred.OwnerID)
	}
	return pred
}

func mustLookup[T Condition](t *testing.T, pred Predicate, field string) T {
	t.Helper()
	cond, ok := pred.Lookup(field)
	if !ok {
		t.Fatalf("expected a condition on %s, got %+v", field, pred.Conditions)
	}
	typed, ok := cond.(T)
	if !ok {
		t.Fatalf("unexpected condition type %T on %s", cond, field)
	}
	return typed
}

func floatEq(p *float64, want float64) bool { return p != nil && *p == want }

func TestParseRequiresOwner(t *testing.T) {
	for _, owner := range []string{"", "   "} {
		if _, err := Parse(map[string]string{"status_eq": "new"}, owner); !errors.Is(err, ErrMissingOwner) {
			t.Fatalf("expected ErrMissingOwner for %q, got %v", owner, err)
		}
	}
}

func TestParseEmptyParamsIsOwnerOnly(t *testing.T) {
	pred := mustParse(t, map[string]string{"unknown": "x", "owner_id_eq": "u2", "score_like": "5"})
	if len(pred.Conditions) != 0 {
		t.Fatalf("expected no conditions, got %+v", pred.Conditions)
	}
}

func TestParseOwnerCannotBeOverridden(t *testing.T) {
	pred, err := Parse(map[string]string{"owner_id": "u2", "userId": "u2", "owner_id_eq": "u2"}, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.OwnerID != "u1" || len(pred.Conditions) != 0 {
		t.Fatalf("owner scope was overridden: %+v", pred)
	}
}

func TestParseStringOperators(t *testing.T) {
	pred := mustParse(t, map[string]string{
		"city_eq":          " Berlin",
		"city_contains":    "ignored",
		"company_contains": "ac.me",
	})

	eq := mustLookup[StringEquals](t, pred, "city")
	if eq.Value != " Berlin" {
		t.Fatalf("eq value must be verbatim, got %q", eq.Value)
	}
	contains := mustLookup[StringContains](t, pred, "company")
	if contains.Value != "ac.me" {
		t.Fatalf("unexpected contains value %q", contains.Value)
	}
	if len(pred.Conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(pred.Conditions))
	}
}

func TestParseEmailEqMatchesStoredForm(t *testing.T) {
	pred := mustParse(t, map[string]string{"email_eq": "  Alice@Example.com "})

	eq := mustLookup[StringEquals](t, pred, "email")
	if eq.Value != "alice@example.com" {
		t.Fatalf("expected email eq to be trimmed and lower-cased, got %q", eq.Value)
	}

	contains := mustLookup[StringContains](t, mustParse(t, map[string]string{"email_contains": "Example"}), "email")
	if contains.Value != "Example" {
		t.Fatalf("contains is case-insensitive and keeps its value, got %q", contains.Value)
	}
}

func TestParseEnumInTrimsAndDropsBlanks(t *testing.T) {
	pred := mustParse(t, map[string]string{"status_in": "new, won , "})

	in := mustLookup[EnumIn](t, pred, "status")
	if len(in.Values) != 2 || in.Values[0] != "new" || in.Values[1] != "won" {
		t.Fatalf("unexpected values %v", in.Values)
	}
}

func TestParseEnumEmptyListAddsNothing(t *testing.T) {
	pred := mustParse(t, map[string]string{"source_in": " , ,"})
	if _, ok := pred.Lookup("source"); ok {
		t.Fatal("empty membership list must not add a predicate")
	}
}

func TestParseEnumEqWinsOverIn(t *testing.T) {
	pred := mustParse(t, map[string]string{"source_eq": "referral", "source_in": "website,events"})

	eq := mustLookup[EnumEquals](t, pred, "source")
	if eq.Value != "referral" {
		t.Fatalf("unexpected value %q", eq.Value)
	}
}

func TestParseNumberBetweenNormalizesOrder(t *testing.T) {
	pred := mustParse(t, map[string]string{"lead_value_between": "50,10"})

	r := mustLookup[NumberRange](t, pred, "lead_value")
	if !floatEq(r.Gte, 10) || !floatEq(r.Lte, 50) || r.Gt != nil || r.Lt != nil {
		t.Fatalf("expected [10,50], got %+v", r)
	}
}

func TestParseNumberGtLtCombine(t *testing.T) {
	pred := mustParse(t, map[string]string{"score_gt": "10", "score_lt": "90"})

	r := mustLookup[NumberRange](t, pred, "score")
	if !floatEq(r.Gt, 10) || !floatEq(r.Lt, 90) || r.Gte != nil || r.Lte != nil {
		t.Fatalf("unexpected range %+v", r)
	}
}

func TestParseNumberAllBoundsApply(t *testing.T) {
	pred := mustParse(t, map[string]string{"score_gt": "5", "score_lt": "95", "score_between": "20,80"})

	r := mustLookup[NumberRange](t, pred, "score")
	if !floatEq(r.Gt, 5) || !floatEq(r.Lt, 95) || !floatEq(r.Gte, 20) || !floatEq(r.Lte, 80) {
		t.Fatalf("expected all four bounds, got %+v", r)
	}
}

func TestParseNumberDropsUnparsableBounds(t *testing.T) {
	pred := mustParse(t, map[string]string{"score_gt": "abc", "score_lt": "70"})

	r := mustLookup[NumberRange](t, pred, "score")
	if r.Gt != nil || !floatEq(r.Lt, 70) {
		t.Fatalf("expected only lt bound, got %+v", r)
	}
}

func TestParseNumberBetweenKeepsUsableComponent(t *testing.T) {
	cases := []struct {
		raw      string
		gte, lte *float64
	}{
		{"x,40", nil, ptr(40.0)},
		{"15,x", ptr(15.0), nil},
		{"15", ptr(15.0), nil},
	}

	for _, tc := range cases {
		pred := mustParse(t, map[string]string{"score_between": tc.raw})
		r := mustLookup[NumberRange](t, pred, "score")
		if !samePtr(r.Gte, tc.gte) || !samePtr(r.Lte, tc.lte) {
			t.Fatalf("%q: unexpected range %+v", tc.raw, r)
		}
	}
}

func TestParseNumberNothingUsableAddsNothing(t *testing.T) {
	pred := mustParse(t, map[string]string{"score_gt": "NaN", "score_lt": "Inf", "score_between": "a,b"})
	if _, ok := pred.Lookup("score"); ok {
		t.Fatal("expected no score predicate")
	}
}

func TestParseNumberEqIsExclusive(t *testing.T) {
	pred := mustParse(t, map[string]string{"score_eq": "42", "score_between": "0,10", "score_gt": "1"})

	eq := mustLookup[NumberEquals](t, pred, "score")
	if eq.Value != 42 {
		t.Fatalf("unexpected eq value %v", eq.Value)
	}
}

func TestParseNumberBadEqDropsField(t *testing.T) {
	pred := mustParse(t, map[string]string{"score_eq": "lots", "score_gt": "10"})
	if _, ok := pred.Lookup("score"); ok {
		t.Fatal("an unparsable eq still takes precedence and yields no predicate")
	}
}

func TestParseDateOnExpandsCalendarDay(t *testing.T) {
	pred := mustParse(t, map[string]string{"created_at_on": "2024-01-15"})

	r := mustLookup[TimeRange](t, pred, "created_at")
	wantStart := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 15, 23, 59, 59, 999_000_000, time.UTC)
	if r.Gte == nil || !r.Gte.Equal(wantStart) || r.Lte == nil || !r.Lte.Equal(wantEnd) {
		t.Fatalf("unexpected day bounds %v - %v", r.Gte, r.Lte)
	}
	if r.Gt != nil || r.Lt != nil {
		t.Fatalf("unexpected strict bounds %+v", r)
	}
}

func TestParseDateOnInstant(t *testing.T) {
	pred := mustParse(t, map[string]string{"last_activity_at_on": "2024-01-15T10:30:00Z", "last_activity_at_before": "2025-01-01"})

	r := mustLookup[TimeRange](t, pred, "last_activity_at")
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if !r.Gte.Equal(want) || !r.Lte.Equal(want) || r.Lt != nil {
		t.Fatalf("expected a single instant, got %+v", r)
	}
}

func TestParseDateOnUnparsableAddsNothing(t *testing.T) {
	pred := mustParse(t, map[string]string{"created_at_on": "yesterday", "created_at_after": "2024-01-01"})
	if _, ok := pred.Lookup("created_at"); ok {
		t.Fatal("on takes precedence even when unparsable")
	}
}

func TestParseDateBeforeAfterAreStrict(t *testing.T) {
	pred := mustParse(t, map[string]string{"created_at_after": "2024-01-01", "created_at_before": "2024-02-01T00:00:00+02:00"})

	r := mustLookup[TimeRange](t, pred, "created_at")
	if r.Gt == nil || !r.Gt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected after bound %v", r.Gt)
	}
	if r.Lt == nil || !r.Lt.Equal(time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected before bound %v", r.Lt)
	}
	if r.Gte != nil || r.Lte != nil {
		t.Fatalf("unexpected inclusive bounds %+v", r)
	}
}

func TestParseDateBetweenSortsBounds(t *testing.T) {
	pred := mustParse(t, map[string]string{"created_at_between": "2024-03-01, 2024-01-01"})

	r := mustLookup[TimeRange](t, pred, "created_at")
	if !r.Gte.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !r.Lte.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range %v - %v", r.Gte, r.Lte)
	}
}

func TestParseDateBetweenKeepsUsableComponent(t *testing.T) {
	pred := mustParse(t, map[string]string{"created_at_between": "garbage,2024-03-01"})

	r := mustLookup[TimeRange](t, pred, "created_at")
	if r.Gte != nil || r.Lte == nil || !r.Lte.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected only an upper bound, got %+v", r)
	}
}

func TestParseBoolean(t *testing.T) {
	cases := []struct {
		raw   string
		want  bool
		added bool
	}{
		{"true", true, true},
		{"FALSE", false, true},
		{"True", true, true},
		{"yes", false, false},
		{"1", false, false},
		{"", false, false},
	}

	for _, tc := range cases {
		pred := mustParse(t, map[string]string{"is_qualified_eq": tc.raw})
		cond, ok := pred.Lookup("is_qualified")
		if ok != tc.added {
			t.Fatalf("%q: expected added=%v, got %v", tc.raw, tc.added, ok)
		}
		if ok && cond.(BoolEquals).Value != tc.want {
			t.Fatalf("%q: expected %v", tc.raw, tc.want)
		}
	}
}

func TestParseConditionsFollowSchemaOrder(t *testing.T) {
	pred := mustParse(t, map[string]string{
		"is_qualified_eq": "true",
		"status_eq":       "won",
		"email_contains":  "a",
	})

	got := make([]string, 0, len(pred.Conditions))
	for _, c := range pred.Conditions {
		got = append(got, c.FieldName())
	}
	if len(got) != 3 || got[0] != "email" || got[1] != "status" || got[2] != "is_qualified" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestParamsKeepsFirstValue(t *testing.T) {
	values := url.Values{"status_eq": {"new", "won"}, "empty": {}}

	params := Params(values)
	if params["status_eq"] != "new" {
		t.Fatalf("expected first value, got %q", params["status_eq"])
	}
	if _, ok := params["empty"]; ok {
		t.Fatal("keys without values should be skipped")
	}
}

func ptr[T any](v T) *T { return &v }

func samePtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
