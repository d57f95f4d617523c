package consent

import (
	"context"
	"testing"
)

func TestSetPreference_UpsertByPair(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	first := &SharingPreference{
		PatientID: "patient-1", ProviderRef: "Practitioner/dr-1",
		Mode: ModeReferralsOnly, Active: true,
	}
	if err := svc.SetPreference(ctx, first); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if first.GrantedAt.IsZero() {
		t.Error("expected granted_at to be stamped")
	}

	// Re-electing for the same pair replaces the mode.
	second := &SharingPreference{
		PatientID: "patient-1", ProviderRef: "Practitioner/dr-1",
		Mode: ModeAllEncounters, Active: true,
	}
	if err := svc.SetPreference(ctx, second); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}

	got, err := svc.GetPreference(ctx, "patient-1", "Practitioner/dr-1")
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if got == nil || got.Mode != ModeAllEncounters {
		t.Errorf("preference = %+v, want mode %q", got, ModeAllEncounters)
	}

	prefs, err := svc.ListByPatient(ctx, "patient-1")
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(prefs) != 1 {
		t.Errorf("got %d preferences, want 1", len(prefs))
	}
}

func TestSetPreference_Validation(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		pref SharingPreference
	}{
		{"missing patient", SharingPreference{ProviderRef: "Practitioner/dr-1", Mode: ModeAllEncounters}},
		{"missing provider", SharingPreference{PatientID: "patient-1", Mode: ModeAllEncounters}},
		{"bad mode", SharingPreference{PatientID: "patient-1", ProviderRef: "Practitioner/dr-1", Mode: "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.SetPreference(ctx, &tt.pref); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreference_Missing(t *testing.T) {
	svc := NewService(NewMemRepo())
	got, err := svc.GetPreference(context.Background(), "patient-1", "Practitioner/dr-1")
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing preference, got %+v", got)
	}
}
