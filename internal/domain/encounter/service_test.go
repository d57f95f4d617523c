package encounter

import (
	"context"
	"testing"
	"time"
)

func TestStore_UpsertByFHIRID(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	created, err := svc.Store(ctx, &Encounter{
		FHIRID:    "e1",
		PatientID: "patient-1",
		Status:    "planned",
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !created {
		t.Error("first store should report created")
	}

	created, err = svc.Store(ctx, &Encounter{
		FHIRID:    "e1",
		PatientID: "patient-1",
		Status:    "finished",
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if created {
		t.Error("second store of same id should report replaced")
	}

	got, err := svc.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != "finished" {
		t.Errorf("status = %q, want finished", got.Status)
	}

	_, total, err := svc.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestStore_Validation(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		enc  Encounter
	}{
		{"missing id", Encounter{PatientID: "patient-1", Status: "planned"}},
		{"missing patient", Encounter{FHIRID: "e1", Status: "planned"}},
		{"missing status", Encounter{FHIRID: "e1", PatientID: "patient-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Store(ctx, &tt.enc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestListByPatient(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		patient := "patient-1"
		if id == "e3" {
			patient = "patient-2"
		}
		if _, err := svc.Store(ctx, &Encounter{
			FHIRID:     id,
			PatientID:  patient,
			Status:     "finished",
			ReceivedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("Store %s: %v", id, err)
		}
	}

	got, err := svc.ListByPatient(ctx, "patient-1")
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d encounters, want 2", len(got))
	}
	if got[0].FHIRID != "e1" || got[1].FHIRID != "e2" {
		t.Errorf("order = [%s %s], want [e1 e2]", got[0].FHIRID, got[1].FHIRID)
	}
}

func TestRef(t *testing.T) {
	e := &Encounter{FHIRID: "abc"}
	if e.Ref() != "Encounter/abc" {
		t.Errorf("Ref() = %q, want Encounter/abc", e.Ref())
	}
}
