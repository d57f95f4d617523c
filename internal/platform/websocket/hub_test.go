package websocket

import (
	"context"
	"encoding/json"
	"testing"
)

func newTestClient(topics ...string) *Client {
	return &Client{
		ID:     "test",
		Topics: topics,
		Send:   make(chan []byte, 8),
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	client := newTestClient(PatientTopic("pat-1"))
	hub.Register(client)

	hub.Broadcast(PatientTopic("pat-1"), NewEvent(EventEncounterStored, PatientTopic("pat-1"), map[string]string{"id": "enc-1"}))

	select {
	case raw := <-client.Send:
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Type != EventEncounterStored {
			t.Errorf("event type = %q, want %q", evt.Type, EventEncounterStored)
		}
		if evt.Topic != "patient/pat-1" {
			t.Errorf("topic = %q", evt.Topic)
		}
	default:
		t.Fatal("expected event on subscribed topic")
	}
}

func TestHub_BroadcastSkipsOtherTopics(t *testing.T) {
	hub := NewHub()
	client := newTestClient(ProviderTopic("Practitioner/dr-1"))
	hub.Register(client)

	hub.Broadcast(PatientTopic("pat-1"), NewEvent(EventEncounterStored, PatientTopic("pat-1"), nil))

	select {
	case <-client.Send:
		t.Fatal("client received event for a topic it is not subscribed to")
	default:
	}
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	hub.Register(client)

	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Topics: []string{"patient/pat-2"}})
	if hub.TopicCount("patient/pat-2") != 1 {
		t.Fatalf("expected 1 subscriber after subscribe")
	}

	hub.ProcessMessage(client, ClientMessage{Action: "unsubscribe", Topics: []string{"patient/pat-2"}})
	if hub.TopicCount("patient/pat-2") != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient("patient/pat-1")
	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d after unregister", hub.ClientCount())
	}
	// Second unregister is a no-op, not a panic on double-close.
	hub.Unregister(client)
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	client := newTestClient("provider/Practitioner/dr-1")
	hub.Register(client)

	evt := NewEvent(EventEncounterRouted, ProviderTopic("Practitioner/dr-1"), map[string]string{"encounter": "enc-9"})
	if err := hub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(client.Send) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(client.Send))
	}
}
