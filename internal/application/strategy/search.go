// Package strategy implements the recommendation pipeline: hybrid similarity
// search over the loaded corpus, pattern and counterfactual analysis, rule
// mining, and the orchestrating engine that composes them into one payload.
package strategy

import (
	"context"
	"math"
	"sort"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/domain/graph"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
)

// centroidPool is how many top metadata matches seed the synthetic query
// embedding. The profile has no embedding of its own; the centroid of its
// best categorical matches stands in for it.
const centroidPool = 10

// Blend weights for the combined score.
const (
	blendMetadata  = 0.6
	blendEmbedding = 0.4
)

// NeighborIndex scores a query vector against every corpus embedding,
// returning one score per case aligned by index. The default is an exact
// in-process scan; a remote vector index can be substituted for large
// corpora.
type NeighborIndex interface {
	Score(ctx context.Context, query []float64) ([]float64, error)
}

// Searcher ranks corpus cases against a query profile by blending metadata
// similarity with embedding similarity. It reads the corpus and embedding
// matrix but never the graph.
type Searcher struct {
	log        logging.Logger
	cases      []casefile.Case
	embeddings [][]float64
	index      NeighborIndex
}

// NewSearcher constructs a searcher over an immutable corpus snapshot.
// The embedding matrix must be unit-normalized and aligned with cases.
func NewSearcher(log logging.Logger, cases []casefile.Case, embeddings [][]float64) *Searcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Searcher{log: log, cases: cases, embeddings: embeddings}
}

// WithIndex substitutes a vector index for the exact embedding scan.
func (s *Searcher) WithIndex(idx NeighborIndex) *Searcher {
	s.index = idx
	return s
}

// FindSimilar returns up to topK deduplicated cases ranked by blended
// similarity, each carrying its combined, metadata, and embedding scores.
// The result is deterministic for a fixed corpus and profile.
func (s *Searcher) FindSimilar(ctx context.Context, profile *casefile.Profile, topK int) []casefile.RankedCase {
	if len(s.cases) == 0 || topK <= 0 {
		return nil
	}

	metaScores := make([]float64, len(s.cases))
	allZero := true
	for i := range s.cases {
		metaScores[i] = casefile.MetadataSimilarity(profile, &s.cases[i])
		if metaScores[i] > 0 {
			allZero = false
		}
	}

	centroid := graph.Centroid(s.embeddings, s.centroidRows(metaScores, allZero))
	embScores := s.embeddingScores(ctx, centroid)

	combined := make([]float64, len(s.cases))
	for i := range combined {
		combined[i] = blendMetadata*metaScores[i] + blendEmbedding*embScores[i]
	}

	order := make([]int, len(s.cases))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return combined[order[a]] > combined[order[b]]
	})

	results := make([]casefile.RankedCase, 0, topK)
	seen := make(map[string]struct{}, topK)
	for _, idx := range order {
		key := s.cases[idx].DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, casefile.RankedCase{
			Case:            s.cases[idx],
			SimilarityScore: round4(combined[idx]),
			MetadataScore:   round4(metaScores[idx]),
			EmbeddingScore:  round4(embScores[idx]),
		})
		if len(results) >= topK {
			break
		}
	}
	return results
}

// centroidRows selects the case indices whose embeddings seed the query
// centroid: the top metadata matches, or the whole corpus when the profile
// had nothing to compare (the search then degrades to pure embedding
// ranking off the corpus centroid).
func (s *Searcher) centroidRows(metaScores []float64, allZero bool) []int {
	rows := make([]int, len(s.cases))
	for i := range rows {
		rows[i] = i
	}
	if allZero {
		return rows
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return metaScores[rows[a]] > metaScores[rows[b]]
	})
	if len(rows) > centroidPool {
		rows = rows[:centroidPool]
	}
	return rows
}

// embeddingScores computes the cosine of the centroid against every case
// embedding, via the configured index when present. Index failures degrade
// to the exact scan rather than failing the query.
func (s *Searcher) embeddingScores(ctx context.Context, centroid []float64) []float64 {
	if centroid == nil {
		return make([]float64, len(s.cases))
	}
	if s.index != nil {
		scores, err := s.index.Score(ctx, centroid)
		if err == nil && len(scores) == len(s.cases) {
			for i, v := range scores {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					scores[i] = 0.0
				}
			}
			return scores
		}
		s.log.Warn("vector index scoring failed; falling back to exact scan", logging.Err(err))
	}
	scores := make([]float64, len(s.cases))
	for i, emb := range s.embeddings {
		scores[i] = graph.Cosine(centroid, emb)
	}
	return scores
}

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
