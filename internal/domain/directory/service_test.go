package directory

import (
	"context"
	"testing"
)

func TestUpsertOrganization(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	org := &Organization{Ref: "Organization/org-1", NPI: "1122334455", Name: "Valley Cardiology"}
	if err := svc.UpsertOrganization(ctx, org); err != nil {
		t.Fatalf("UpsertOrganization: %v", err)
	}

	// Upsert with the same ref replaces.
	org2 := &Organization{Ref: "Organization/org-1", NPI: "1122334455", Name: "Valley Cardiology Associates"}
	if err := svc.UpsertOrganization(ctx, org2); err != nil {
		t.Fatalf("UpsertOrganization: %v", err)
	}

	got, err := svc.GetOrganization(ctx, "Organization/org-1")
	if err != nil {
		t.Fatalf("GetOrganization: %v", err)
	}
	if got.Name != "Valley Cardiology Associates" {
		t.Errorf("name = %q, want replaced name", got.Name)
	}

	_, total, err := svc.ListOrganizations(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestUpsert_Validation(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	if err := svc.UpsertOrganization(ctx, &Organization{}); err == nil {
		t.Error("expected error for empty org ref")
	}
	if err := svc.UpsertOrganization(ctx, &Organization{Ref: "org-1"}); err == nil {
		t.Error("expected error for unprefixed org ref")
	}
	if err := svc.UpsertPractitioner(ctx, &Practitioner{Ref: "Organization/x"}); err == nil {
		t.Error("expected error for wrong practitioner ref prefix")
	}
}

func TestLookup(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	if err := svc.UpsertOrganization(ctx, &Organization{
		Ref: "Organization/org-1", NPI: "1122334455", Name: "Valley Cardiology",
	}); err != nil {
		t.Fatalf("UpsertOrganization: %v", err)
	}
	if err := svc.UpsertPractitioner(ctx, &Practitioner{
		Ref: "Practitioner/dr-1", NPI: "9876543210", Specialty: "207RC0000X",
	}); err != nil {
		t.Fatalf("UpsertPractitioner: %v", err)
	}
	if err := svc.UpsertPractitioner(ctx, &Practitioner{
		Ref: "Practitioner/dr-2", Name: "No Identifiers",
	}); err != nil {
		t.Fatalf("UpsertPractitioner: %v", err)
	}

	lookup := svc.Lookup(ctx)

	if npi, ok := lookup.OrganizationNPI("Organization/org-1"); !ok || npi != "1122334455" {
		t.Errorf("OrganizationNPI = %q, %v", npi, ok)
	}
	if _, ok := lookup.OrganizationNPI("Organization/missing"); ok {
		t.Error("expected miss for unknown organization")
	}

	if npi, ok := lookup.PractitionerNPI("Practitioner/dr-1"); !ok || npi != "9876543210" {
		t.Errorf("PractitionerNPI = %q, %v", npi, ok)
	}
	if spec, ok := lookup.PractitionerSpecialty("Practitioner/dr-1"); !ok || spec != "207RC0000X" {
		t.Errorf("PractitionerSpecialty = %q, %v", spec, ok)
	}

	// Present but without identifiers reads as a miss.
	if _, ok := lookup.PractitionerNPI("Practitioner/dr-2"); ok {
		t.Error("expected miss for practitioner with no npi")
	}
	if _, ok := lookup.PractitionerSpecialty("Practitioner/dr-2"); ok {
		t.Error("expected miss for practitioner with no specialty")
	}
}
