package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/domain/graph"
)

func searchCorpus() ([]casefile.Case, [][]float64) {
	cases := []casefile.Case{
		{Index: 0, CaseNumber: "A", JobTitle: "software engineer", CompanyType: casefile.CompanyConsulting, Outcome: casefile.OutcomeFavorable},
		{Index: 1, CaseNumber: "B", JobTitle: "accountant", CompanyType: casefile.CompanyStaffing, Outcome: casefile.OutcomeUnfavorable},
		{Index: 2, CaseNumber: "C", JobTitle: "software developer", CompanyType: casefile.CompanyConsulting, Outcome: casefile.OutcomeFavorable},
	}
	raw := [][]float64{
		{1.0, 0.0, 0.0},
		{0.0, 1.0, 0.0},
		{0.9, 0.1, 0.0},
	}
	embeddings := make([][]float64, len(raw))
	for i, v := range raw {
		embeddings[i] = graph.Normalize(v)
	}
	return cases, embeddings
}

func TestSearcher_FindSimilarRanking(t *testing.T) {
	cases, embeddings := searchCorpus()
	s := NewSearcher(nil, cases, embeddings)

	profile := &casefile.Profile{
		JobTitle:    "software engineer",
		CompanyType: casefile.CompanyConsulting,
	}
	results := s.FindSimilar(context.Background(), profile, 3)
	require.Len(t, results, 3)

	// The exact job-title and company-type match ranks first.
	assert.Equal(t, "A", results[0].CaseNumber)
	// Scores are attached, bounded, and descending.
	prev := 1.1
	for _, r := range results {
		assert.GreaterOrEqual(t, r.SimilarityScore, 0.0)
		assert.LessOrEqual(t, r.SimilarityScore, 1.0)
		assert.GreaterOrEqual(t, r.MetadataScore, 0.0)
		assert.LessOrEqual(t, r.MetadataScore, 1.0)
		assert.LessOrEqual(t, r.SimilarityScore, prev)
		prev = r.SimilarityScore
	}
}

func TestSearcher_TopKBound(t *testing.T) {
	cases, embeddings := searchCorpus()
	s := NewSearcher(nil, cases, embeddings)

	results := s.FindSimilar(context.Background(), &casefile.Profile{JobTitle: "software engineer"}, 2)
	assert.Len(t, results, 2)

	assert.Nil(t, s.FindSimilar(context.Background(), &casefile.Profile{}, 0))
}

func TestSearcher_DeduplicatesByCaseNumber(t *testing.T) {
	cases, embeddings := searchCorpus()
	// Duplicate filing of case A at a different index.
	cases = append(cases, casefile.Case{Index: 3, CaseNumber: "A", JobTitle: "software engineer", CompanyType: casefile.CompanyConsulting})
	embeddings = append(embeddings, graph.Normalize([]float64{1.0, 0.0, 0.0}))

	s := NewSearcher(nil, cases, embeddings)
	results := s.FindSimilar(context.Background(), &casefile.Profile{JobTitle: "software engineer"}, 10)

	seen := make(map[string]bool)
	for _, r := range results {
		assert.False(t, seen[r.CaseNumber], "duplicate case number %s", r.CaseNumber)
		seen[r.CaseNumber] = true
	}
	assert.Len(t, results, 3)
}

func TestSearcher_EmptyProfileDegradesToEmbeddingRanking(t *testing.T) {
	cases, embeddings := searchCorpus()
	s := NewSearcher(nil, cases, embeddings)

	results := s.FindSimilar(context.Background(), &casefile.Profile{}, 3)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 0.0, r.MetadataScore)
		assert.GreaterOrEqual(t, r.EmbeddingScore, 0.0)
	}
}

func TestSearcher_Deterministic(t *testing.T) {
	cases, embeddings := searchCorpus()
	s := NewSearcher(nil, cases, embeddings)
	profile := &casefile.Profile{JobTitle: "software engineer"}

	first := s.FindSimilar(context.Background(), profile, 3)
	second := s.FindSimilar(context.Background(), profile, 3)
	assert.Equal(t, first, second)
}

type failingIndex struct{}

func (failingIndex) Score(context.Context, []float64) ([]float64, error) {
	return nil, assert.AnError
}

func TestSearcher_IndexFailureFallsBackToExactScan(t *testing.T) {
	cases, embeddings := searchCorpus()
	s := NewSearcher(nil, cases, embeddings).WithIndex(failingIndex{})

	results := s.FindSimilar(context.Background(), &casefile.Profile{JobTitle: "software engineer"}, 3)
	require.Len(t, results, 3)
	assert.Greater(t, results[0].EmbeddingScore, 0.0)
}
