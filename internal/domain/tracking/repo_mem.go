package tracking

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
}

func NewMemRepo() Repository {
	return &memRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (r *memRepo) Create(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	cp := *t
	return &cp, nil
}

func (r *memRepo) GetByReferralID(_ context.Context, referralID uuid.UUID) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ReferralID == referralID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("task for referral %s not found", referralID)
}

func (r *memRepo) Update(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s not found", t.ID)
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*Task, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedByCreation()
	total := len(all)
	if offset >= total {
		return []*Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memRepo) ListOpenByPatient(_ context.Context, patientID string) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var open []*Task
	for _, t := range r.sortedByCreation() {
		if t.PatientID == patientID && !t.Terminal() {
			open = append(open, t)
		}
	}
	return open, nil
}

func (r *memRepo) ListOpen(_ context.Context) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var open []*Task
	for _, t := range r.sortedByCreation() {
		if !t.Terminal() {
			open = append(open, t)
		}
	}
	return open, nil
}

// sortedByCreation returns copies ordered oldest-first. Callers hold r.mu.
func (r *memRepo) sortedByCreation() []*Task {
	all := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		cp := *t
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
