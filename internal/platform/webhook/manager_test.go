package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterEndpoint_GeneratesSecret(t *testing.T) {
	m := NewManager(NewInMemoryStore())
	ep, err := m.RegisterEndpoint(context.Background(), "https://example.com/hook", "", "Practitioner/dr-1", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if ep.Secret == "" {
		t.Error("expected generated secret")
	}
	if ep.Status != "active" {
		t.Errorf("status = %q, want active", ep.Status)
	}
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	m := NewManager(NewInMemoryStore())
	if _, err := m.RegisterEndpoint(context.Background(), "", "s", "sub", nil); err == nil {
		t.Error("expected error for empty url")
	}
	if _, err := m.RegisterEndpoint(context.Background(), "ftp://example.com", "s", "sub", nil); err == nil {
		t.Error("expected error for non-http scheme")
	}
	if _, err := m.RegisterEndpoint(context.Background(), "https://example.com", "s", "", nil); err == nil {
		t.Error("expected error for empty subscriber")
	}
}

func TestDeliver_SignsAndPosts(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Webhook-Signature")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewManager(NewInMemoryStore())
	ep, err := m.RegisterEndpoint(context.Background(), srv.URL, "topsecret", "Practitioner/dr-1", []string{EventEncounterRouted})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	event := NewEvent(EventEncounterRouted, "Practitioner/dr-1", map[string]string{"encounter_id": "enc-1"})
	results := m.Deliver(context.Background(), event)
	if len(results) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(results))
	}
	if !results[0].Success {
		t.Fatalf("delivery failed: %s", results[0].Error)
	}
	if gotSig != "sha256="+SignPayload(gotBody, ep.Secret) {
		t.Error("signature header does not verify against delivered body")
	}
}

func TestDeliver_SkipsOtherSubscribers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("endpoint for another subscriber should not be called")
	}))
	defer srv.Close()

	m := NewManager(NewInMemoryStore())
	if _, err := m.RegisterEndpoint(context.Background(), srv.URL, "s", "Practitioner/dr-2", nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	results := m.Deliver(context.Background(), NewEvent(EventEncounterRouted, "Practitioner/dr-1", nil))
	if len(results) != 0 {
		t.Fatalf("expected 0 deliveries, got %d", len(results))
	}
}

func TestDeliver_RecordsFailedAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewInMemoryStore()
	m := NewManager(store)
	ep, _ := m.RegisterEndpoint(context.Background(), srv.URL, "s", "pat-1", nil)

	results := m.Deliver(context.Background(), NewEvent(EventEncounterStored, "pat-1", nil))
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failed delivery, got %+v", results)
	}

	attempts, total, err := store.ListDeliveries(context.Background(), ep.ID, 10, 0)
	if err != nil || total != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d (err %v)", total, err)
	}
	if attempts[0].Status != "failed" {
		t.Errorf("attempt status = %q, want failed", attempts[0].Status)
	}
}

func TestVerifySignature(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"a": "b"})
	sig := SignPayload(payload, "secret")
	if !VerifySignature(payload, "secret", sig) {
		t.Error("signature should verify")
	}
	if VerifySignature(payload, "other", sig) {
		t.Error("signature should not verify under wrong secret")
	}
}
