package matching

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Signal weights. Exact identifiers are authoritative and carry 0.60
// combined; fuzzy name and specialty corroborate; the date window is a
// sanity check since referral windows are often generously set.
const (
	WeightOrganizationNPI  = 0.35
	WeightOrganizationName = 0.20
	WeightPractitionerNPI  = 0.25
	WeightSpecialty        = 0.10
	WeightDateInWindow     = 0.10

	// MinScore is the relevance floor below which a result is noise and
	// excluded from the output.
	MinScore = 0.10

	// AutoLinkThreshold is the score at which a match is treated as
	// authoritative for lifecycle advancement and routing.
	AutoLinkThreshold = 0.70
)

// Confidence is a coarse bucketing of a numeric score for human consumption.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Signal names the individual scoring signals reported in a result breakdown.
type Signal string

const (
	SignalOrganizationNPI  Signal = "organization-npi"
	SignalOrganizationName Signal = "organization-name"
	SignalPractitionerNPI  Signal = "practitioner-npi"
	SignalSpecialty        Signal = "specialty"
	SignalDateInWindow     Signal = "date-in-window"
)

// Target holds a referral's destination identifiers. A target with none of
// organization NPI, organization name, or practitioner NPI set is
// unmatchable and skipped by the scorer.
type Target struct {
	OrganizationNPI  *string
	OrganizationName *string
	PractitionerNPI  *string
	Specialty        *string
}

// Matchable reports whether the target carries at least one usable
// destination identifier.
func (t Target) Matchable() bool {
	return t.OrganizationNPI != nil || t.OrganizationName != nil || t.PractitionerNPI != nil
}

// Candidate is one open referral offered to the scorer, paired with its
// tracking task.
type Candidate struct {
	ReferralID  uuid.UUID
	TaskID      uuid.UUID
	Target      Target
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// EncounterInput is the slice of an encounter the scorer evaluates.
type EncounterInput struct {
	OrganizationRef  string
	OrganizationName string
	// PractitionerRef is the first participant's individual reference.
	PractitionerRef string
	// PractitionerNPI is an identifier embedded directly on the first
	// participant, used when the lookup cannot resolve the reference.
	PractitionerNPI string
	PeriodStart     *time.Time
}

// Lookup resolves directory references to identifiers. Every method reports
// ok=false for unknown references; absence degrades the score and is never
// an error.
type Lookup interface {
	OrganizationNPI(ref string) (string, bool)
	PractitionerNPI(ref string) (string, bool)
	PractitionerSpecialty(ref string) (string, bool)
}

// Result is one scored referral candidate. Signals holds each signal's
// weighted contribution for explainability.
type Result struct {
	ReferralID uuid.UUID          `json:"referral_id"`
	TaskID     uuid.UUID          `json:"task_id"`
	Score      float64            `json:"score"`
	Confidence Confidence         `json:"confidence"`
	Signals    map[Signal]float64 `json:"signals"`
}

// ConfidenceFor buckets a score: >=0.70 high, >=0.40 medium, else low.
func ConfidenceFor(score float64) Confidence {
	switch {
	case score >= AutoLinkThreshold:
		return ConfidenceHigh
	case score >= 0.40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Score evaluates an encounter against a set of open referral candidates and
// returns surviving results sorted by score descending. An encounter with no
// servicing organization yields no results.
func Score(enc EncounterInput, candidates []Candidate, lookup Lookup) []Result {
	if enc.OrganizationRef == "" {
		return nil
	}

	var results []Result
	for _, cand := range candidates {
		if !cand.Target.Matchable() {
			continue
		}
		res := scoreCandidate(enc, cand, lookup)
		if res.Score < MinScore {
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func scoreCandidate(enc EncounterInput, cand Candidate, lookup Lookup) Result {
	signals := make(map[Signal]float64)

	if cand.Target.OrganizationNPI != nil {
		if npi, ok := lookup.OrganizationNPI(enc.OrganizationRef); ok && npi == *cand.Target.OrganizationNPI {
			signals[SignalOrganizationNPI] = WeightOrganizationNPI
		}
	}

	if cand.Target.OrganizationName != nil && enc.OrganizationName != "" {
		sim := FuzzyNameSimilarity(*cand.Target.OrganizationName, enc.OrganizationName)
		if sim > 0 {
			signals[SignalOrganizationName] = WeightOrganizationName * sim
		}
	}

	if cand.Target.PractitionerNPI != nil {
		if npi := resolvePractitionerNPI(enc, lookup); npi != "" && npi == *cand.Target.PractitionerNPI {
			signals[SignalPractitionerNPI] = WeightPractitionerNPI
		}
	}

	if cand.Target.Specialty != nil && enc.PractitionerRef != "" {
		if code, ok := lookup.PractitionerSpecialty(enc.PractitionerRef); ok && code == *cand.Target.Specialty {
			signals[SignalSpecialty] = WeightSpecialty
		}
	}

	if inWindow(enc.PeriodStart, cand.WindowStart, cand.WindowEnd) {
		signals[SignalDateInWindow] = WeightDateInWindow
	}

	var total float64
	for _, v := range signals {
		total += v
	}

	return Result{
		ReferralID: cand.ReferralID,
		TaskID:     cand.TaskID,
		Score:      total,
		Confidence: ConfidenceFor(total),
		Signals:    signals,
	}
}

// resolvePractitionerNPI prefers the directory lookup, falling back to the
// identifier embedded on the encounter's participant.
func resolvePractitionerNPI(enc EncounterInput, lookup Lookup) string {
	if enc.PractitionerRef != "" {
		if npi, ok := lookup.PractitionerNPI(enc.PractitionerRef); ok {
			return npi
		}
	}
	return enc.PractitionerNPI
}

// inWindow reports whether start falls inside the validity window,
// inclusive. An unset window bound imposes no constraint on that side.
func inWindow(start, windowStart, windowEnd *time.Time) bool {
	if start == nil {
		return false
	}
	if windowStart != nil && start.Before(*windowStart) {
		return false
	}
	if windowEnd != nil && start.After(*windowEnd) {
		return false
	}
	return true
}
