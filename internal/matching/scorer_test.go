package matching

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Lookup --

type mockLookup struct {
	orgNPI       map[string]string
	practNPI     map[string]string
	practSpecial map[string]string
}

func (m *mockLookup) OrganizationNPI(ref string) (string, bool) {
	v, ok := m.orgNPI[ref]
	return v, ok
}

func (m *mockLookup) PractitionerNPI(ref string) (string, bool) {
	v, ok := m.practNPI[ref]
	return v, ok
}

func (m *mockLookup) PractitionerSpecialty(ref string) (string, bool) {
	v, ok := m.practSpecial[ref]
	return v, ok
}

func strptr(s string) *string { return &s }

func candidate(target Target) Candidate {
	return Candidate{
		ReferralID: uuid.New(),
		TaskID:     uuid.New(),
		Target:     target,
	}
}

func TestScore_NoServiceProvider(t *testing.T) {
	enc := EncounterInput{OrganizationName: "Valley Cardiology"}
	cands := []Candidate{candidate(Target{OrganizationName: strptr("Valley Cardiology")})}
	if got := Score(enc, cands, &mockLookup{}); len(got) != 0 {
		t.Fatalf("expected no results without a servicing organization, got %d", len(got))
	}
}

func TestScore_UnmatchableReferralSkipped(t *testing.T) {
	enc := EncounterInput{
		OrganizationRef:  "Organization/org-1",
		OrganizationName: "Valley Cardiology",
	}
	cands := []Candidate{candidate(Target{Specialty: strptr("207RC0000X")})}
	if got := Score(enc, cands, &mockLookup{}); len(got) != 0 {
		t.Fatalf("referral with no target identifiers should be skipped, got %d results", len(got))
	}
}

func TestScore_OrgIdentifierAndName(t *testing.T) {
	lookup := &mockLookup{orgNPI: map[string]string{"Organization/org-1": "1122334455"}}
	enc := EncounterInput{
		OrganizationRef:  "Organization/org-1",
		OrganizationName: "Valley Cardiology",
	}
	cands := []Candidate{candidate(Target{
		OrganizationNPI:  strptr("1122334455"),
		OrganizationName: strptr("Valley Cardiology"),
	})}

	results := Score(enc, cands, lookup)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if math.Abs(r.Score-0.55) > 1e-9 {
		t.Errorf("score = %f, want 0.55", r.Score)
	}
	if r.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %q, want medium", r.Confidence)
	}
	if r.Signals[SignalOrganizationNPI] != WeightOrganizationNPI {
		t.Errorf("org NPI signal = %f, want %f", r.Signals[SignalOrganizationNPI], WeightOrganizationNPI)
	}
	if math.Abs(r.Signals[SignalOrganizationName]-WeightOrganizationName) > 1e-9 {
		t.Errorf("org name signal = %f, want %f", r.Signals[SignalOrganizationName], WeightOrganizationName)
	}
}

func TestScore_AllSignals(t *testing.T) {
	lookup := &mockLookup{
		orgNPI:       map[string]string{"Organization/org-1": "1122334455"},
		practNPI:     map[string]string{"Practitioner/doc-1": "9876543210"},
		practSpecial: map[string]string{"Practitioner/doc-1": "207RC0000X"},
	}
	start := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	enc := EncounterInput{
		OrganizationRef:  "Organization/org-1",
		OrganizationName: "Valley Cardiology",
		PractitionerRef:  "Practitioner/doc-1",
		PeriodStart:      &start,
	}
	cand := candidate(Target{
		OrganizationNPI:  strptr("1122334455"),
		OrganizationName: strptr("Valley Cardiology"),
		PractitionerNPI:  strptr("9876543210"),
		Specialty:        strptr("207RC0000X"),
	})
	cand.WindowStart = &windowStart
	cand.WindowEnd = &windowEnd

	results := Score(enc, []Candidate{cand}, lookup)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if math.Abs(r.Score-1.0) > 1e-9 {
		t.Errorf("score = %f, want 1.0", r.Score)
	}
	if r.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want high", r.Confidence)
	}
	if len(r.Signals) != 5 {
		t.Errorf("expected 5 signals in breakdown, got %d", len(r.Signals))
	}
}

func TestScore_NameOnlyComposition(t *testing.T) {
	enc := EncounterInput{
		OrganizationRef:  "Organization/org-1",
		OrganizationName: "Valley Cardiology Associates LLC",
	}
	cands := []Candidate{candidate(Target{OrganizationName: strptr("Valley Cardiology")})}

	results := Score(enc, cands, &mockLookup{})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	sim := FuzzyNameSimilarity("Valley Cardiology", "Valley Cardiology Associates LLC")
	want := WeightOrganizationName * sim
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("score = %f, want exactly 0.20 * similarity = %f", results[0].Score, want)
	}
	if results[0].Score < 0.14 {
		t.Errorf("boilerplate-suffixed name should score >= 0.14, got %f", results[0].Score)
	}
}

func TestScore_BelowThresholdDiscarded(t *testing.T) {
	lookup := &mockLookup{orgNPI: map[string]string{"Organization/org-1": "9999999999"}}
	enc := EncounterInput{
		OrganizationRef:  "Organization/org-1",
		OrganizationName: "Metro Orthopedic Group",
	}
	cands := []Candidate{candidate(Target{
		OrganizationNPI:  strptr("1122334455"),
		OrganizationName: strptr("Valley Cardiology"),
	})}

	if got := Score(enc, cands, lookup); len(got) != 0 {
		t.Fatalf("identifier mismatch with unrelated name should fall below threshold, got %d results (score %f)",
			len(got), got[0].Score)
	}
}

func TestScore_EmbeddedPractitionerIdentifierFallback(t *testing.T) {
	enc := EncounterInput{
		OrganizationRef: "Organization/org-1",
		PractitionerRef: "Practitioner/unknown",
		PractitionerNPI: "9876543210",
	}
	cands := []Candidate{candidate(Target{PractitionerNPI: strptr("9876543210")})}

	results := Score(enc, cands, &mockLookup{})
	if len(results) != 1 {
		t.Fatalf("expected 1 result via embedded identifier fallback, got %d", len(results))
	}
	if results[0].Signals[SignalPractitionerNPI] != WeightPractitionerNPI {
		t.Errorf("practitioner signal missing from breakdown")
	}
}

func TestScore_SortedDescending(t *testing.T) {
	lookup := &mockLookup{orgNPI: map[string]string{"Organization/org-1": "1122334455"}}
	enc := EncounterInput{
		OrganizationRef:  "Organization/org-1",
		OrganizationName: "Valley Cardiology",
	}
	strong := candidate(Target{
		OrganizationNPI:  strptr("1122334455"),
		OrganizationName: strptr("Valley Cardiology"),
	})
	weak := candidate(Target{OrganizationName: strptr("Valley Cardiology")})

	results := Score(enc, []Candidate{weak, strong}, lookup)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending: %f before %f", results[i-1].Score, results[i].Score)
		}
	}
	if results[0].ReferralID != strong.ReferralID {
		t.Errorf("strongest candidate should sort first")
	}
}

func TestConfidenceFor(t *testing.T) {
	cases := []struct {
		score float64
		want  Confidence
	}{
		{1.0, ConfidenceHigh},
		{0.70, ConfidenceHigh},
		{0.69, ConfidenceMedium},
		{0.40, ConfidenceMedium},
		{0.39, ConfidenceLow},
		{0.10, ConfidenceLow},
	}
	for _, c := range cases {
		if got := ConfidenceFor(c.score); got != c.want {
			t.Errorf("ConfidenceFor(%f) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestInWindow_UnsetBounds(t *testing.T) {
	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !inWindow(&start, nil, nil) {
		t.Error("unbounded window should accept any start")
	}
	if inWindow(nil, nil, nil) {
		t.Error("missing period start should not satisfy the date signal")
	}
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if inWindow(&start, nil, &end) {
		t.Error("start after window end should be rejected")
	}
	if !inWindow(&end, nil, &end) {
		t.Error("window bounds are inclusive")
	}
}
