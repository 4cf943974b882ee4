package strategy

import (
	"fmt"
	"strings"

	"github.com/precedex/precedex/internal/domain/casefile"
)

// lowSampleFloor is the similar-case count below which the explanation
// carries an explicit statistical caution.
const lowSampleFloor = 5

// buildExplanation assembles the deterministic human-readable summary:
// profile line, risk line, outcome tally, top recommended additions, and a
// low-sample caution when the similar set is thin.
func buildExplanation(profile *casefile.Profile, similar []casefile.RankedCase, prob *ProbabilityEstimate, recs []Recommendation, risk string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Based on %d similar appeal cases, here is the analysis for a %s position at a %s company with %s.",
		len(similar), orNA(profileJobTitle(profile)), orNA(profileCompanyType(profile)), orNA(profileWageLevel(profile)),
	))

	parts = append(parts, "\nRISK: "+risk)

	var favorable, unfavorable, remanded int
	for i := range similar {
		switch similar[i].Outcome {
		case casefile.OutcomeFavorable:
			favorable++
		case casefile.OutcomeUnfavorable:
			unfavorable++
		case casefile.OutcomeRemanded:
			remanded++
		}
	}
	parts = append(parts, fmt.Sprintf(
		"\nAmong similar cases: %d favorable, %d unfavorable, %d remanded.",
		favorable, unfavorable, remanded,
	))

	if len(recs) > 0 {
		parts = append(parts, "\nRECOMMENDED ADDITIONS to your argument strategy:")
		top := recs
		if len(top) > 5 {
			top = top[:5]
		}
		for i, r := range top {
			parts = append(parts, fmt.Sprintf(
				"  %d. Add '%s' - %s (confidence: %s, n=%d)",
				i+1, r.Add, r.Impact, r.Confidence, r.SampleSize,
			))
		}
	} else {
		parts = append(parts,
			"\nNo strong additional arguments identified. Your current "+
				"strategy covers the most effective arguments for similar cases.")
	}

	if profile != nil && len(profile.CurrentArguments) > 0 {
		parts = append(parts, fmt.Sprintf(
			"\nYour current arguments (%s) are included in the analysis. "+
				"The recommendations above suggest arguments to ADD on top of "+
				"your current strategy.",
			strings.Join(profile.CurrentArguments, ", "),
		))
	}

	if prob.SampleSize < lowSampleFloor {
		parts = append(parts, fmt.Sprintf(
			"\nCAUTION: Only %d similar cases found. These results are "+
				"directional, not statistically significant.",
			prob.SampleSize,
		))
	}

	return strings.Join(parts, "\n")
}

func profileJobTitle(p *casefile.Profile) string {
	if p == nil {
		return ""
	}
	return p.JobTitle
}

func profileCompanyType(p *casefile.Profile) string {
	if p == nil {
		return ""
	}
	return string(p.CompanyType)
}

func profileWageLevel(p *casefile.Profile) string {
	if p == nil {
		return ""
	}
	return p.WageLevel.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
