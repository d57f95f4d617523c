package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu            sync.RWMutex
	organizations map[string]*Organization
	practitioners map[string]*Practitioner
}

func NewMemRepo() Repository {
	return &memRepo{
		organizations: make(map[string]*Organization),
		practitioners: make(map[string]*Practitioner),
	}
}

func (r *memRepo) UpsertOrganization(_ context.Context, org *Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *org
	r.organizations[org.Ref] = &cp
	return nil
}

func (r *memRepo) GetOrganization(_ context.Context, ref string) (*Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.organizations[ref]
	if !ok {
		return nil, fmt.Errorf("organization %s not found", ref)
	}
	cp := *org
	return &cp, nil
}

func (r *memRepo) ListOrganizations(_ context.Context, limit, offset int) ([]*Organization, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]string, 0, len(r.organizations))
	for ref := range r.organizations {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	total := len(refs)
	if offset >= total {
		return []*Organization{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*Organization, 0, end-offset)
	for _, ref := range refs[offset:end] {
		cp := *r.organizations[ref]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (r *memRepo) UpsertPractitioner(_ context.Context, p *Practitioner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.practitioners[p.Ref] = &cp
	return nil
}

func (r *memRepo) GetPractitioner(_ context.Context, ref string) (*Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.practitioners[ref]
	if !ok {
		return nil, fmt.Errorf("practitioner %s not found", ref)
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) ListPractitioners(_ context.Context, limit, offset int) ([]*Practitioner, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]string, 0, len(r.practitioners))
	for ref := range r.practitioners {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	total := len(refs)
	if offset >= total {
		return []*Practitioner{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*Practitioner, 0, end-offset)
	for _, ref := range refs[offset:end] {
		cp := *r.practitioners[ref]
		out = append(out, &cp)
	}
	return out, total, nil
}
