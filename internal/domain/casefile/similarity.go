package casefile

import "strings"

// Field weights for the metadata score. Weights are renormalized over the
// fields actually compared, so a profile missing a field redistributes that
// weight across the remaining present fields instead of penalizing the score.
const (
	weightJobTitle    = 0.30
	weightCompanyType = 0.20
	weightWageLevel   = 0.15
	weightRFEIssues   = 0.35
)

// TokenJaccard is the token-set Jaccard similarity of two strings under
// case-insensitive whitespace tokenization. Either side tokenizing to the
// empty set yields 0.
func TokenJaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	return jaccard(ta, tb)
}

// SetJaccard is the Jaccard similarity of two tag sets. Two empty sets yield
// 0, not 1: the absence of evidence on both sides is no evidence of match.
func SetJaccard(a, b []string) float64 {
	sa := sliceSet(a)
	sb := sliceSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0.0
	}
	return jaccard(sa, sb)
}

// WageLevelSimilarity maps ordinal distance on the four-tier scale to
// 1 - |Δ|/3. Either side unset yields 0.
func WageLevelSimilarity(a, b WageLevel) float64 {
	if !a.IsSet() || !b.IsSet() {
		return 0.0
	}
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return 1.0 - float64(d)/3.0
}

// CompanyTypeSimilarity is 1 for an exact match and 0 otherwise.
func CompanyTypeSimilarity(a, b CompanyType) float64 {
	if a == b {
		return 1.0
	}
	return 0.0
}

// MetadataSimilarity scores a case against a profile as a weighted average
// of up to four field comparators, each contributing only when both sides
// have the field populated. A profile with no comparable fields scores 0 for
// every case; the caller degrades to pure embedding ranking in that case.
func MetadataSimilarity(p *Profile, c *Case) float64 {
	var scores, weights []float64

	if p.JobTitle != "" && c.JobTitle != "" {
		scores = append(scores, TokenJaccard(p.JobTitle, c.JobTitle))
		weights = append(weights, weightJobTitle)
	}
	if p.CompanyType != "" && c.CompanyType != "" {
		scores = append(scores, CompanyTypeSimilarity(p.CompanyType, c.CompanyType))
		weights = append(weights, weightCompanyType)
	}
	if p.WageLevel.IsSet() && c.WageLevel.IsSet() {
		scores = append(scores, WageLevelSimilarity(p.WageLevel, c.WageLevel))
		weights = append(weights, weightWageLevel)
	}
	if len(p.RFEIssues) > 0 && len(c.RFEIssues) > 0 {
		scores = append(scores, SetJaccard(p.RFEIssues, c.RFEIssues))
		weights = append(weights, weightRFEIssues)
	}

	if len(weights) == 0 {
		return 0.0
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	var sum float64
	for i, s := range scores {
		sum += s * weights[i] / total
	}
	return sum
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		out[tok] = struct{}{}
	}
	return out
}

func sliceSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	var inter int
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}
