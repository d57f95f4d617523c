package encounter

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter
}

func NewMemRepo() Repository {
	return &memRepo{encounters: make(map[string]*Encounter)}
}

func (r *memRepo) Upsert(_ context.Context, e *Encounter) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.encounters[e.FHIRID]
	cp := *e
	r.encounters[e.FHIRID] = &cp
	return !exists, nil
}

func (r *memRepo) GetByFHIRID(_ context.Context, fhirID string) (*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.encounters[fhirID]
	if !ok {
		return nil, fmt.Errorf("encounter %s not found", fhirID)
	}
	cp := *e
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*Encounter, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedByReceipt()
	total := len(all)
	if offset >= total {
		return []*Encounter{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memRepo) ListByPatient(_ context.Context, patientID string) ([]*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Encounter
	for _, e := range r.sortedByReceipt() {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

// sortedByReceipt returns copies ordered oldest-first. Callers hold r.mu.
func (r *memRepo) sortedByReceipt() []*Encounter {
	all := make([]*Encounter, 0, len(r.encounters))
	for _, e := range r.encounters {
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].ReceivedAt.Equal(all[j].ReceivedAt) {
			return all[i].FHIRID < all[j].FHIRID
		}
		return all[i].ReceivedAt.Before(all[j].ReceivedAt)
	})
	return all
}
