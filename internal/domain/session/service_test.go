package session

import (
	"context"
	"testing"
	"time"
)

var testKey = []byte("test-signing-key")

func TestCreateSession_MintsToken(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "ext-123", "patient-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if !sess.Active {
		t.Error("new session should be active")
	}

	claims, err := svc.VerifyToken(sess.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims["sub"] != "patient-1" {
		t.Errorf("sub = %v, want patient-1", claims["sub"])
	}
	if claims["ext"] != "ext-123" {
		t.Errorf("ext = %v, want ext-123", claims["ext"])
	}
}

func TestCreateSession_Validation(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	if _, err := svc.CreateSession(context.Background(), "", "patient-1"); err == nil {
		t.Error("expected error for empty external id")
	}
}

func TestCreateSession_DefaultsPatientID(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	sess, err := svc.CreateSession(context.Background(), "ext-123", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.PatientID != "ext-123" {
		t.Errorf("patient id = %q, want ext-123", sess.PatientID)
	}
}

func TestCreateSession_ReplacesActiveSession(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, "ext-123", "patient-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	second, err := svc.CreateSession(ctx, "ext-123", "patient-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := svc.GetSession(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Active {
		t.Error("first session should be deactivated")
	}

	got, err = svc.GetSession(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !got.Active {
		t.Error("second session should be active")
	}
}

func TestVerifyToken_WrongKey(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	sess, err := svc.CreateSession(context.Background(), "ext-123", "patient-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	other := NewService(NewMemRepo(), []byte("different-key"), time.Hour)
	if _, err := other.VerifyToken(sess.AccessToken); err == nil {
		t.Error("expected verification failure with wrong key")
	}
}

func TestResolvePatientID(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, "ext-123", "patient-1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := svc.ResolvePatientID(ctx, "ext-123")
	if err != nil {
		t.Fatalf("ResolvePatientID: %v", err)
	}
	if got != "patient-1" {
		t.Errorf("resolved = %q, want patient-1", got)
	}

	// Unknown identifiers pass through unchanged.
	got, err = svc.ResolvePatientID(ctx, "never-seen")
	if err != nil {
		t.Fatalf("ResolvePatientID: %v", err)
	}
	if got != "never-seen" {
		t.Errorf("resolved = %q, want pass-through", got)
	}
}

func TestResolvePatientID_ExpiredSession(t *testing.T) {
	svc := NewService(NewMemRepo(), testKey, time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return base })
	if _, err := svc.CreateSession(ctx, "ext-123", "patient-1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	svc.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	got, err := svc.ResolvePatientID(ctx, "ext-123")
	if err != nil {
		t.Fatalf("ResolvePatientID: %v", err)
	}
	if got != "ext-123" {
		t.Errorf("resolved = %q, expired session should pass through", got)
	}
}
