package referral

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu        sync.RWMutex
	referrals map[uuid.UUID]*Referral
}

func NewMemRepo() Repository {
	return &memRepo{referrals: make(map[uuid.UUID]*Referral)}
}

func (r *memRepo) Create(_ context.Context, ref *Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	cp := *ref
	r.referrals[ref.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.referrals[id]
	if !ok {
		return nil, fmt.Errorf("referral %s not found", id)
	}
	cp := *ref
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*Referral, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedByCreation()
	total := len(all)
	if offset >= total {
		return []*Referral{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memRepo) ListByPatient(_ context.Context, patientID string) ([]*Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Referral
	for _, ref := range r.sortedByCreation() {
		if ref.PatientID == patientID {
			out = append(out, ref)
		}
	}
	return out, nil
}

// sortedByCreation returns copies ordered oldest-first. Callers hold r.mu.
func (r *memRepo) sortedByCreation() []*Referral {
	all := make([]*Referral, 0, len(r.referrals))
	for _, ref := range r.referrals {
		cp := *ref
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all
}
