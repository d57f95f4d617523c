// Package matching implements the referral match scoring engine: fuzzy
// organization-name comparison plus exact identifier signals, combined into
// weighted match results with confidence tiers.
package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// stopTerms are healthcare-organization boilerplate tokens that carry no
// distinguishing signal ("Valley Cardiology Associates LLC" should compare
// equal to "Valley Cardiology").
var stopTerms = map[string]struct{}{
	"llc": {}, "inc": {}, "corp": {}, "corporation": {},
	"associates": {}, "assoc": {}, "group": {},
	"medical": {}, "med": {}, "center": {}, "centre": {}, "clinic": {},
	"pa": {}, "pc": {}, "md": {}, "do": {}, "dds": {}, "dpm": {},
	"healthcare": {}, "health": {}, "services": {}, "practice": {},
	"partners": {}, "pllc": {}, "ltd": {},
}

const punctuation = ".',-/()"

// Normalize lowercases an organization name, replaces punctuation with
// spaces, and removes boilerplate tokens. If stripping boilerplate would
// leave nothing, the original tokens are kept so that a name made entirely
// of stop terms never normalizes to the empty string.
func Normalize(name string) string {
	lowered := strings.ToLower(name)
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, lowered)

	tokens := strings.Fields(stripped)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopTerms[tok]; !stop {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		kept = tokens
	}
	return strings.Join(kept, " ")
}

// EditDistance returns the Levenshtein distance between a and b.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// TokenSetSimilarity returns the Jaccard index of the whitespace-token sets
// of a and b. Two empty token sets yield 0.
func TokenSetSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// FuzzyNameSimilarity scores two organization names in [0,1]. Identical
// normalized forms score exactly 1.0. Otherwise the score is the greater of
// the token-set similarity and a length-normalized edit similarity: token
// overlap tolerates reordering and added qualifier words, edit similarity
// tolerates minor spelling drift.
func FuzzyNameSimilarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == nb {
		return 1.0
	}

	tokenSim := TokenSetSimilarity(na, nb)

	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	editSim := 1.0
	if maxLen > 0 {
		editSim = 1.0 - float64(EditDistance(na, nb))/float64(maxLen)
	}

	if tokenSim > editSim {
		return tokenSim
	}
	return editSim
}
