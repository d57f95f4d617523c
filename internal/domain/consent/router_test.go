package consent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/durvester/referral-loop-closure/internal/matching"
)

func TestRoute_DecisionTable(t *testing.T) {
	referralID := uuid.New()
	highMatch := &matching.Result{ReferralID: referralID, Score: 0.85}
	lowMatch := &matching.Result{ReferralID: referralID, Score: 0.55}

	active := func(mode string) *SharingPreference {
		return &SharingPreference{PatientID: "p1", ProviderRef: "Practitioner/dr-1", Mode: mode, Active: true}
	}
	inactive := active(ModeAllEncounters)
	inactive.Active = false

	tests := []struct {
		name       string
		pref       *SharingPreference
		match      *matching.Result
		wantRouted bool
		wantReason string
	}{
		{"no preference", nil, highMatch, false, "no active sharing preference"},
		{"inactive preference", inactive, highMatch, false, "no active sharing preference"},
		{"all encounters with match", active(ModeAllEncounters), highMatch, true, "patient elected to share all encounters"},
		{"all encounters without match", active(ModeAllEncounters), nil, true, "patient elected to share all encounters"},
		{"referrals only high match", active(ModeReferralsOnly), highMatch,
			true, fmt.Sprintf("matched referral %s (score: 0.85)", referralID)},
		{"referrals only low match", active(ModeReferralsOnly), lowMatch, false, "no referral match found"},
		{"referrals only no match", active(ModeReferralsOnly), nil, false, "no referral match found"},
		{"unknown mode", active("everything"), highMatch, false, "no active sharing preference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Route(tt.pref, tt.match)
			if d.Routed != tt.wantRouted {
				t.Errorf("routed = %v, want %v", d.Routed, tt.wantRouted)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestRoute_ThresholdBoundary(t *testing.T) {
	pref := &SharingPreference{Mode: ModeReferralsOnly, Active: true}

	at := &matching.Result{ReferralID: uuid.New(), Score: matching.AutoLinkThreshold}
	if d := Route(pref, at); !d.Routed {
		t.Errorf("score at threshold should route, got %+v", d)
	}

	below := &matching.Result{ReferralID: uuid.New(), Score: matching.AutoLinkThreshold - 0.01}
	if d := Route(pref, below); d.Routed {
		t.Errorf("score below threshold should not route, got %+v", d)
	}
}

func TestRoute_ReasonMentionsScore(t *testing.T) {
	pref := &SharingPreference{Mode: ModeReferralsOnly, Active: true}
	d := Route(pref, &matching.Result{ReferralID: uuid.New(), Score: 0.8512})
	if !d.Routed {
		t.Fatalf("expected routed, got %+v", d)
	}
	if !strings.Contains(d.Reason, "0.85") {
		t.Errorf("reason %q should carry the rounded score", d.Reason)
	}
}
