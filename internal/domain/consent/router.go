package consent

import (
	"fmt"

	"github.com/durvester/referral-loop-closure/internal/matching"
)

// Decision is the outcome of a routing evaluation: whether the encounter is
// surfaced to the referring provider, and a human-readable reason either way.
type Decision struct {
	Routed bool   `json:"routed"`
	Reason string `json:"reason"`
}

// Route decides whether an encounter reaches the referring provider. pref is
// the patient's preference for that provider, nil when none exists; match is
// the best scorer result, nil when nothing matched.
//
// The two axes are independent: an all-encounters election routes with or
// without a match, while referrals-only requires a high-confidence match.
func Route(pref *SharingPreference, match *matching.Result) Decision {
	if pref == nil || !pref.Active {
		return Decision{Routed: false, Reason: "no active sharing preference"}
	}

	switch pref.Mode {
	case ModeAllEncounters:
		return Decision{Routed: true, Reason: "patient elected to share all encounters"}
	case ModeReferralsOnly:
		if match != nil && match.Score >= matching.AutoLinkThreshold {
			return Decision{
				Routed: true,
				Reason: fmt.Sprintf("matched referral %s (score: %.2f)", match.ReferralID, match.Score),
			}
		}
		return Decision{Routed: false, Reason: "no referral match found"}
	default:
		return Decision{Routed: false, Reason: "no active sharing preference"}
	}
}
