package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precedex/precedex/internal/domain/casefile"
)

func TestConfidenceLabel(t *testing.T) {
	assert.Equal(t, ConfidenceVeryLow, ConfidenceLabel(0))
	assert.Equal(t, ConfidenceVeryLow, ConfidenceLabel(2))
	assert.Equal(t, ConfidenceLow, ConfidenceLabel(3))
	assert.Equal(t, ConfidenceMedium, ConfidenceLabel(5))
	assert.Equal(t, ConfidenceHigh, ConfidenceLabel(10))
	assert.Equal(t, ConfidenceVeryHigh, ConfidenceLabel(20))
}

func TestAnalyzer_ArgumentPatterns(t *testing.T) {
	cases := []casefile.Case{
		{Outcome: casefile.OutcomeFavorable, ArgumentsMade: []string{"expert_letter", "wage_survey"}},
		{Outcome: casefile.OutcomeUnfavorable, ArgumentsMade: []string{"wage_survey"}},
		{Outcome: casefile.OutcomeRemanded, ArgumentsMade: []string{"expert_letter"}},
	}
	a := NewAnalyzer(nil, cases, nil)

	stats := a.ArgumentPatterns(cases)
	require.Len(t, stats, 2)

	// expert_letter: 1 favorable of 2; wage_survey: 1 of 2 but one loss.
	assert.Equal(t, "expert_letter", stats[0].Argument)
	assert.InDelta(t, 0.5, stats[0].SuccessRate, 1e-9)
	assert.Equal(t, 1, stats[0].Favorable)
	assert.Equal(t, 1, stats[0].Remanded)
	assert.Equal(t, ConfidenceVeryLow, stats[0].Confidence)

	assert.Equal(t, "wage_survey", stats[1].Argument)
	assert.Equal(t, 1, stats[1].Unfavorable)
}

func TestAnalyzer_CounterfactualScenario(t *testing.T) {
	// Argument X: present in 2 favorable cases, absent from 1 favorable and
	// 1 unfavorable.
	cases := []casefile.Case{
		{Outcome: casefile.OutcomeFavorable, ArgumentsMade: []string{"x"}},
		{Outcome: casefile.OutcomeFavorable, ArgumentsMade: []string{"x"}},
		{Outcome: casefile.OutcomeFavorable},
		{Outcome: casefile.OutcomeUnfavorable},
	}
	a := NewAnalyzer(nil, cases, nil)

	cfs := a.Counterfactuals(cases)
	require.Len(t, cfs, 1)
	cf := cfs[0]
	assert.Equal(t, "x", cf.Argument)
	assert.Equal(t, 2, cf.WithCount)
	assert.Equal(t, 2, cf.WithoutCount)
	assert.InDelta(t, 1.0, cf.WithSuccessRate, 1e-9)
	assert.InDelta(t, 0.5, cf.WithoutSuccessRate, 1e-9)
	assert.InDelta(t, 0.5, cf.Impact, 1e-9)
}

func TestAnalyzer_CounterfactualBounds(t *testing.T) {
	cases := []casefile.Case{
		{Outcome: casefile.OutcomeUnfavorable, ArgumentsMade: []string{"bad_arg"}},
		{Outcome: casefile.OutcomeFavorable},
		{Outcome: casefile.OutcomeFavorable},
	}
	a := NewAnalyzer(nil, cases, nil)

	for _, cf := range a.Counterfactuals(cases) {
		assert.GreaterOrEqual(t, cf.Impact, -1.0)
		assert.LessOrEqual(t, cf.Impact, 1.0)
		assert.GreaterOrEqual(t, cf.WithSuccessRate, 0.0)
		assert.LessOrEqual(t, cf.WithSuccessRate, 1.0)
		assert.GreaterOrEqual(t, cf.WithoutSuccessRate, 0.0)
		assert.LessOrEqual(t, cf.WithoutSuccessRate, 1.0)
	}
}

func TestAnalyzer_CounterfactualsNilSubsetUsesCorpus(t *testing.T) {
	corpus := []casefile.Case{
		{Outcome: casefile.OutcomeFavorable, ArgumentsMade: []string{"x"}},
		{Outcome: casefile.OutcomeUnfavorable},
	}
	a := NewAnalyzer(nil, corpus, nil)
	assert.Len(t, a.Counterfactuals(nil), 1)
}

func TestAnalyzer_SuccessProbabilityEmpty(t *testing.T) {
	a := NewAnalyzer(nil, nil, nil)
	p := a.SuccessProbability(&casefile.Profile{}, nil)
	assert.Equal(t, 0.0, p.Probability)
	assert.Equal(t, 0, p.SampleSize)
	assert.Equal(t, "no similar cases", p.Basis)
}

func TestAnalyzer_SuccessProbabilityWeighted(t *testing.T) {
	a := NewAnalyzer(nil, nil, nil)
	similar := []casefile.RankedCase{
		{Case: casefile.Case{Outcome: casefile.OutcomeFavorable}, SimilarityScore: 0.9},
		{Case: casefile.Case{Outcome: casefile.OutcomeUnfavorable}, SimilarityScore: 0.1},
	}
	p := a.SuccessProbability(&casefile.Profile{}, similar)
	assert.InDelta(t, 0.9, p.BaseProbability, 1e-9)
	assert.Equal(t, 1, p.FavorableInSimilar)
	assert.Equal(t, 2, p.SampleSize)
	assert.Equal(t, ConfidenceVeryLow, p.Confidence)
}

func TestAnalyzer_SuccessProbabilityZeroWeightsFallsBackToMean(t *testing.T) {
	a := NewAnalyzer(nil, nil, nil)
	similar := []casefile.RankedCase{
		{Case: casefile.Case{Outcome: casefile.OutcomeFavorable}},
		{Case: casefile.Case{Outcome: casefile.OutcomeUnfavorable}},
	}
	p := a.SuccessProbability(&casefile.Profile{}, similar)
	assert.InDelta(t, 0.5, p.BaseProbability, 1e-9)
}

func TestAnalyzer_SuccessProbabilityBoostAndClamp(t *testing.T) {
	a := NewAnalyzer(nil, nil, nil)
	// All favorable with the argument and one unfavorable without, so the
	// argument has positive impact and the profile already carries it.
	similar := []casefile.RankedCase{
		{Case: casefile.Case{Outcome: casefile.OutcomeFavorable, ArgumentsMade: []string{"x"}}, SimilarityScore: 1.0},
		{Case: casefile.Case{Outcome: casefile.OutcomeFavorable, ArgumentsMade: []string{"x"}}, SimilarityScore: 1.0},
		{Case: casefile.Case{Outcome: casefile.OutcomeUnfavorable}, SimilarityScore: 0.01},
	}
	p := a.SuccessProbability(&casefile.Profile{CurrentArguments: []string{"x"}}, similar)
	assert.Greater(t, p.ArgumentBoost, 0.0)
	assert.LessOrEqual(t, p.Probability, 1.0)
	assert.GreaterOrEqual(t, p.Probability, p.BaseProbability)
}
