package graph

import (
	"strconv"
	"time"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

// PairFinder locates all case pairs whose embedding cosine similarity
// exceeds a threshold. The default implementation scans every unordered
// pair; an approximate-nearest-neighbor index can be substituted without
// touching the builder.
type PairFinder interface {
	FindPairs(embeddings [][]float64, threshold float64) ([]SimilarPair, error)
}

// ExactPairFinder compares every unordered pair (i, j), i < j, by dot
// product over the unit-normalized embeddings. O(N²) in corpus size; the
// target deployments hold tens to low hundreds of cases, so the quadratic
// scan is the intended cost.
type ExactPairFinder struct{}

// FindPairs implements PairFinder.
func (ExactPairFinder) FindPairs(embeddings [][]float64, threshold float64) ([]SimilarPair, error) {
	var out []SimilarPair
	for i := 0; i < len(embeddings); i++ {
		for j := i + 1; j < len(embeddings); j++ {
			w := Dot(embeddings[i], embeddings[j])
			if w > threshold {
				out = append(out, SimilarPair{Source: i, Target: j, Weight: w})
			}
		}
	}
	return out, nil
}

// BuildStats summarizes one graph construction pass. SimilarPairs == 0 is a
// reportable condition, not an error: a high threshold on a sparse corpus
// legitimately produces no similarity edges.
type BuildStats struct {
	Cases        int           `json:"cases"`
	Nodes        int           `json:"nodes"`
	Edges        int           `json:"edges"`
	SimilarPairs int           `json:"similar_pairs"`
	Threshold    float64       `json:"threshold"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Builder owns the corpus triple: the case list, the aligned unit-normalized
// embedding matrix, and the graph constructed over them. One builder holds
// exactly one corpus generation; a rebuild produces a fresh builder rather
// than mutating a live one.
type Builder struct {
	log    logging.Logger
	finder PairFinder

	cases      []casefile.Case
	embeddings [][]float64
	graph      *Graph
}

// NewBuilder constructs an empty builder using the exact pairwise finder.
func NewBuilder(log logging.Logger) *Builder {
	return NewBuilderWithFinder(log, ExactPairFinder{})
}

// NewBuilderWithFinder constructs an empty builder with a custom pair
// finder.
func NewBuilderWithFinder(log logging.Logger, finder PairFinder) *Builder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if finder == nil {
		finder = ExactPairFinder{}
	}
	return &Builder{log: log, finder: finder}
}

// Load stores the case list and normalizes every raw embedding to unit
// length, keeping the matrix aligned with the case indices. Zero-norm raw
// embeddings become zero vectors rather than failing the load.
func (b *Builder) Load(cases []casefile.Case, raw [][]float64) error {
	if len(cases) == 0 {
		return errors.New(errors.ErrCodeCorpusEmpty, "no cases to load")
	}
	if len(cases) != len(raw) {
		return errors.New(errors.ErrCodeCorpusMalformed, "case list and embedding matrix are misaligned").
			WithDetail("cases=" + strconv.Itoa(len(cases)) + " embeddings=" + strconv.Itoa(len(raw)))
	}
	dim := len(raw[0])
	normalized := make([][]float64, len(raw))
	for i, v := range raw {
		if len(v) != dim {
			return errors.New(errors.ErrCodeCorpusMalformed, "embedding dimensionality is inconsistent").
				WithDetail("index=" + strconv.Itoa(i))
		}
		normalized[i] = Normalize(v)
	}

	b.cases = cases
	b.embeddings = normalized
	b.graph = nil

	b.log.Info("corpus loaded",
		logging.Int("cases", len(cases)),
		logging.Int("embedding_dim", dim),
	)
	return nil
}

// Build constructs the relationship graph over the loaded corpus: one node
// per case, deduplicated nodes per attribute value, typed attribute edges,
// and symmetric SIMILAR_TO edges for every pair above the threshold.
func (b *Builder) Build(threshold float64) (*BuildStats, error) {
	if len(b.cases) == 0 {
		return nil, errors.NotLoaded("no corpus loaded; call Load first")
	}

	start := time.Now()
	g := New()

	for i := range b.cases {
		c := &b.cases[i]
		caseID := g.AddCaseNode(c.Index)

		if c.Outcome != "" {
			g.AddEdge(caseID, g.AddValueNode(NodeOutcome, string(c.Outcome)), EdgeResultedIn, 0)
		}
		for _, arg := range c.ArgumentsMade {
			g.AddEdge(caseID, g.AddValueNode(NodeArgument, arg), EdgeUsedArg, 0)
		}
		if c.CompanyType != "" {
			g.AddEdge(caseID, g.AddValueNode(NodeCompanyType, string(c.CompanyType)), EdgeFiledBy, 0)
		}
		if c.JobTitle != "" {
			g.AddEdge(caseID, g.AddValueNode(NodeJobTitle, c.JobTitle), EdgeForRole, 0)
		}
		for _, issue := range c.RFEIssues {
			g.AddEdge(caseID, g.AddValueNode(NodeRFEIssue, issue), EdgeReceivedRFE, 0)
		}
	}

	pairs, err := b.finder.FindPairs(b.embeddings, threshold)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "similarity pair scan failed")
	}
	for _, p := range pairs {
		g.AddSimilarPair(p.Source, p.Target, p.Weight)
	}

	b.graph = g

	stats := &BuildStats{
		Cases:        len(b.cases),
		Nodes:        g.NodeCount(),
		Edges:        g.EdgeCount(),
		SimilarPairs: len(pairs),
		Threshold:    threshold,
		Elapsed:      time.Since(start),
	}
	if stats.SimilarPairs == 0 {
		b.log.Warn("graph built with no similarity edges; consider lowering the threshold",
			logging.Float64("threshold", threshold),
			logging.Int("cases", stats.Cases),
		)
	} else {
		b.log.Info("graph built",
			logging.Int("nodes", stats.Nodes),
			logging.Int("edges", stats.Edges),
			logging.Int("similar_pairs", stats.SimilarPairs),
			logging.Duration("elapsed", stats.Elapsed),
		)
	}
	return stats, nil
}

// Cases returns the loaded case list.
func (b *Builder) Cases() []casefile.Case { return b.cases }

// Embeddings returns the unit-normalized embedding matrix, aligned with
// Cases by index.
func (b *Builder) Embeddings() [][]float64 { return b.embeddings }

// Graph returns the constructed graph, or nil before Build.
func (b *Builder) Graph() *Graph { return b.graph }

// Loaded reports whether a corpus is resident.
func (b *Builder) Loaded() bool { return len(b.cases) > 0 }
