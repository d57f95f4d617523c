package directory

import (
	"context"
)

// Lookup adapts the directory to the match scorer's resolver interface. The
// scorer is context-free, so the request context is captured at construction.
type Lookup struct {
	ctx context.Context
	svc *Service
}

func (s *Service) Lookup(ctx context.Context) *Lookup {
	return &Lookup{ctx: ctx, svc: s}
}

func (l *Lookup) OrganizationNPI(ref string) (string, bool) {
	org, err := l.svc.GetOrganization(l.ctx, ref)
	if err != nil || org.NPI == "" {
		return "", false
	}
	return org.NPI, true
}

func (l *Lookup) PractitionerNPI(ref string) (string, bool) {
	p, err := l.svc.GetPractitioner(l.ctx, ref)
	if err != nil || p.NPI == "" {
		return "", false
	}
	return p.NPI, true
}

func (l *Lookup) PractitionerSpecialty(ref string) (string, bool) {
	p, err := l.svc.GetPractitioner(l.ctx, ref)
	if err != nil || p.Specialty == "" {
		return "", false
	}
	return p.Specialty, true
}
