package matching

import (
	"math"
	"testing"
)

func TestNormalize_StripsBoilerplate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Valley Cardiology Associates LLC", "valley cardiology"},
		{"Valley Cardiology", "valley cardiology"},
		{"St. Mary's Medical Center, Inc.", "st mary s"},
		{"METRO ORTHOPEDIC GROUP", "metro orthopedic"},
		{"A/B Clinic (West)", "a b west"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_AllStopTermsKeepsOriginalTokens(t *testing.T) {
	if got := Normalize("Medical Group LLC"); got != "medical group llc" {
		t.Errorf("Normalize(%q) = %q, want original tokens kept", "Medical Group LLC", got)
	}
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize(\"\") = %q, want empty", got)
	}
}

func TestEditDistance_Identity(t *testing.T) {
	for _, s := range []string{"", "a", "cardiology", "valley cardiology"} {
		if d := EditDistance(s, s); d != 0 {
			t.Errorf("EditDistance(%q, %q) = %d, want 0", s, s, d)
		}
	}
}

func TestEditDistance_EmptyAgainstString(t *testing.T) {
	if d := EditDistance("", "abcde"); d != 5 {
		t.Errorf("EditDistance(\"\", \"abcde\") = %d, want 5", d)
	}
}

func TestEditDistance_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"valley", "volley"},
		{"", "abc"},
		{"cardiology", "radiology"},
	}
	for _, p := range pairs {
		ab := EditDistance(p[0], p[1])
		ba := EditDistance(p[1], p[0])
		if ab != ba {
			t.Errorf("EditDistance not symmetric for (%q, %q): %d vs %d", p[0], p[1], ab, ba)
		}
	}
}

func TestTokenSetSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"valley cardiology", "valley cardiology", 1.0},
		{"valley cardiology", "cardiology valley", 1.0},
		{"valley cardiology", "valley orthopedics", 1.0 / 3.0},
		{"a b", "c d", 0},
		{"", "", 0},
	}
	for _, c := range cases {
		got := TokenSetSimilarity(c.a, c.b)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("TokenSetSimilarity(%q, %q) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
}

func TestFuzzyNameSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"Valley Cardiology", "Metro Orthopedic Group", ""} {
		if got := FuzzyNameSimilarity(s, s); got != 1.0 {
			t.Errorf("FuzzyNameSimilarity(%q, %q) = %f, want 1.0", s, s, got)
		}
	}
}

func TestFuzzyNameSimilarity_CaseInsensitive(t *testing.T) {
	if got := FuzzyNameSimilarity("ABC", "abc"); got != 1.0 {
		t.Errorf("case change alone lowered score to %f", got)
	}
	if got := FuzzyNameSimilarity("VALLEY CARDIOLOGY", "Valley Cardiology"); got != 1.0 {
		t.Errorf("case change alone lowered score to %f", got)
	}
}

func TestFuzzyNameSimilarity_BoilerplateSuffix(t *testing.T) {
	got := FuzzyNameSimilarity("Valley Cardiology", "Valley Cardiology Associates LLC")
	if got != 1.0 {
		t.Errorf("boilerplate suffix should normalize away, got %f", got)
	}
}

func TestFuzzyNameSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"Valley Cardiology", "Metro Orthopedic Group"},
		{"a", "zzzzzzzzzz"},
		{"Valley Cardiology", ""},
		{"St. Mary's", "Saint Marys"},
	}
	for _, p := range pairs {
		got := FuzzyNameSimilarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("FuzzyNameSimilarity(%q, %q) = %f out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestFuzzyNameSimilarity_SpellingDrift(t *testing.T) {
	// One substitution in a long name should stay a strong match.
	got := FuzzyNameSimilarity("Valley Cardiology", "Velley Cardiology")
	if got < 0.8 {
		t.Errorf("minor spelling drift scored %f, want >= 0.8", got)
	}
}
