package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/precedex/precedex/internal/domain/casefile"
)

func TestBuildExplanation_FullProfile(t *testing.T) {
	profile := &casefile.Profile{
		JobTitle:         "software engineer",
		CompanyType:      casefile.CompanyConsulting,
		WageLevel:        casefile.WageII,
		CurrentArguments: []string{"expert_letter"},
	}
	similar := []casefile.RankedCase{
		{Case: casefile.Case{Outcome: casefile.OutcomeFavorable}},
		{Case: casefile.Case{Outcome: casefile.OutcomeUnfavorable}},
		{Case: casefile.Case{Outcome: casefile.OutcomeRemanded}},
	}
	recs := []Recommendation{
		{Add: "prior_approvals", Impact: "+40% success rate", Confidence: ConfidenceLow, SampleSize: 3},
	}
	prob := &ProbabilityEstimate{Probability: 0.55, SampleSize: 3}

	text := buildExplanation(profile, similar, prob, recs, "risk line")

	assert.Contains(t, text, "Based on 3 similar appeal cases")
	assert.Contains(t, text, "software engineer position at a consulting company with Level II")
	assert.Contains(t, text, "RISK: risk line")
	assert.Contains(t, text, "1 favorable, 1 unfavorable, 1 remanded")
	assert.Contains(t, text, "1. Add 'prior_approvals'")
	assert.Contains(t, text, "Your current arguments (expert_letter)")
	assert.Contains(t, text, "CAUTION: Only 3 similar cases found")
}

func TestBuildExplanation_EmptyProfileAndNoRecs(t *testing.T) {
	text := buildExplanation(&casefile.Profile{}, nil, &ProbabilityEstimate{}, nil, "risk")

	assert.Contains(t, text, "a N/A position at a N/A company with N/A")
	assert.Contains(t, text, "No strong additional arguments identified")
	assert.NotContains(t, text, "Your current arguments")
}

func TestBuildExplanation_TopFiveRecommendationsOnly(t *testing.T) {
	recs := make([]Recommendation, 7)
	for i := range recs {
		recs[i] = Recommendation{Add: string(rune('a' + i))}
	}
	text := buildExplanation(&casefile.Profile{}, nil, &ProbabilityEstimate{SampleSize: 10}, recs, "risk")

	assert.Contains(t, text, "5. Add 'e'")
	assert.False(t, strings.Contains(text, "6. Add"), "only five recommendations should render")
	assert.NotContains(t, text, "CAUTION")
}
