package consent

import (
	"context"
	"sort"
	"sync"
)

type prefKey struct {
	patientID   string
	providerRef string
}

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu    sync.RWMutex
	prefs map[prefKey]*SharingPreference
}

func NewMemRepo() Repository {
	return &memRepo{prefs: make(map[prefKey]*SharingPreference)}
}

func (r *memRepo) Upsert(_ context.Context, pref *SharingPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pref
	r.prefs[prefKey{pref.PatientID, pref.ProviderRef}] = &cp
	return nil
}

func (r *memRepo) Get(_ context.Context, patientID, providerRef string) (*SharingPreference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pref, ok := r.prefs[prefKey{patientID, providerRef}]
	if !ok {
		return nil, nil
	}
	cp := *pref
	return &cp, nil
}

func (r *memRepo) ListByPatient(_ context.Context, patientID string) ([]*SharingPreference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*SharingPreference
	for key, pref := range r.prefs {
		if key.patientID == patientID {
			cp := *pref
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderRef < out[j].ProviderRef })
	return out, nil
}
