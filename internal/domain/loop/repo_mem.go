package loop

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu     sync.RWMutex
	events map[string]*RoutedEvent
}

func NewMemRepo() Repository {
	return &memRepo{events: make(map[string]*RoutedEvent)}
}

func (r *memRepo) Upsert(_ context.Context, ev *RoutedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.events[ev.EncounterFHIRID]; ok {
		ev.ID = prev.ID
	} else if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	cp := *ev
	r.events[ev.EncounterFHIRID] = &cp
	return nil
}

func (r *memRepo) DeleteByEncounterID(_ context.Context, encounterFHIRID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, encounterFHIRID)
	return nil
}

func (r *memRepo) GetByEncounterID(_ context.Context, encounterFHIRID string) (*RoutedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[encounterFHIRID]
	if !ok {
		return nil, fmt.Errorf("routed event for encounter %s not found", encounterFHIRID)
	}
	cp := *ev
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*RoutedEvent, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedByTime()
	total := len(all)
	if offset >= total {
		return []*RoutedEvent{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memRepo) ListByProvider(_ context.Context, providerRef string) ([]*RoutedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*RoutedEvent
	for _, ev := range r.sortedByTime() {
		if ev.ProviderRef == providerRef {
			out = append(out, ev)
		}
	}
	return out, nil
}

// sortedByTime returns copies ordered oldest-first. Callers hold r.mu.
func (r *memRepo) sortedByTime() []*RoutedEvent {
	all := make([]*RoutedEvent, 0, len(r.events))
	for _, ev := range r.events {
		cp := *ev
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].RoutedAt.Equal(all[j].RoutedAt) {
			return all[i].EncounterFHIRID < all[j].EncounterFHIRID
		}
		return all[i].RoutedAt.Before(all[j].RoutedAt)
	})
	return all
}
