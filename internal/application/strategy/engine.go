package strategy

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/precedex/precedex/internal/config"
	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/domain/graph"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

// CaseStore fetches the corpus from persistent storage: the case records
// and their precomputed embeddings, aligned by position.
type CaseStore interface {
	FetchCases(ctx context.Context) ([]casefile.Case, [][]float64, error)
}

// Cache stores computed recommendation payloads. A nil byte slice with a
// nil error signals a miss; any error is treated as a miss too, so a cache
// outage degrades to recomputation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Metrics receives the engine's operational measurements.
type Metrics interface {
	ObserveRecommend(seconds float64)
	ObserveBuild(seconds float64)
	SetCorpusSize(n int)
}

// recommendCacheTTL bounds staleness of cached payloads; keys also carry
// the corpus generation, so a rebuild naturally invalidates old entries.
const recommendCacheTTL = 15 * time.Minute

// engineState is one immutable corpus generation. Queries read a single
// state pointer, so an in-flight query never observes a half-replaced
// corpus; a rebuild swaps the pointer atomically.
type engineState struct {
	builder  *graph.Builder
	searcher *Searcher
	analyzer *Analyzer
	stats    *graph.BuildStats
	builtAt  time.Time
}

// Engine owns the builder, searcher, and analyzer and exposes the
// end-to-end recommendation operation plus the lightweight graph-data
// operation. It has two states: unloaded (only the load operations are
// valid) and loaded.
type Engine struct {
	log logging.Logger
	cfg config.EngineConfig

	store     CaseStore
	snapshots graph.Store
	cache     Cache
	metrics   Metrics
	index     NeighborIndex
	finder    graph.PairFinder

	mu    sync.RWMutex
	state *engineState
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithCaseStore wires the persistent case source used by LoadFromStore.
func WithCaseStore(s CaseStore) Option { return func(e *Engine) { e.store = s } }

// WithSnapshotStore wires snapshot persistence for save-on-build and
// LoadFromSnapshot.
func WithSnapshotStore(s graph.Store) Option { return func(e *Engine) { e.snapshots = s } }

// WithCache wires the recommendation payload cache.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithMetrics wires operational metrics.
func WithMetrics(m Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithNeighborIndex substitutes a vector index for the searcher's exact
// embedding scan.
func WithNeighborIndex(idx NeighborIndex) Option { return func(e *Engine) { e.index = idx } }

// WithPairFinder substitutes the graph builder's similarity pair scan.
func WithPairFinder(f graph.PairFinder) Option { return func(e *Engine) { e.finder = f } }

// NewEngine constructs an unloaded engine.
func NewEngine(log logging.Logger, cfg config.EngineConfig, opts ...Option) *Engine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	e := &Engine{log: log.Named("engine"), cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Loaded reports whether a corpus generation is resident.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state != nil
}

// Stats returns the build statistics of the current generation.
func (e *Engine) Stats() (*graph.BuildStats, error) {
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	return st.stats, nil
}

// LoadFromStore fetches the corpus, builds the graph, persists a snapshot
// when a snapshot store is configured, and atomically swaps in the new
// generation. The previous generation keeps serving queries until the swap.
func (e *Engine) LoadFromStore(ctx context.Context) (*graph.BuildStats, error) {
	if e.store == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "no case store configured")
	}

	start := time.Now()
	cases, embeddings, err := e.store.FetchCases(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "fetch cases")
	}

	builder := graph.NewBuilderWithFinder(e.log, e.finder)
	if err := builder.Load(cases, embeddings); err != nil {
		return nil, err
	}
	stats, err := builder.Build(e.cfg.EdgeThreshold)
	if err != nil {
		return nil, err
	}

	if e.snapshots != nil {
		if err := e.saveSnapshot(ctx, builder); err != nil {
			e.log.Warn("snapshot save failed; continuing with in-memory corpus", logging.Err(err))
		}
	}

	e.swap(builder, stats)

	if e.metrics != nil {
		e.metrics.ObserveBuild(time.Since(start).Seconds())
		e.metrics.SetCorpusSize(len(cases))
	}
	return stats, nil
}

// LoadFromSnapshot restores the corpus and graph from the configured
// snapshot store, skipping the fetch and rebuild entirely.
func (e *Engine) LoadFromSnapshot(ctx context.Context) error {
	if e.snapshots == nil {
		return errors.New(errors.ErrCodeServiceUnavailable, "no snapshot store configured")
	}

	data, err := e.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	snap, err := graph.DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return err
	}

	builder := graph.NewBuilderWithFinder(e.log, e.finder)
	if err := builder.Restore(snap); err != nil {
		return err
	}

	e.swap(builder, &graph.BuildStats{
		Cases:        len(builder.Cases()),
		Nodes:        builder.Graph().NodeCount(),
		Edges:        builder.Graph().EdgeCount(),
		SimilarPairs: len(builder.Graph().SimilarPairs()),
		Threshold:    snap.Threshold,
	})

	if e.metrics != nil {
		e.metrics.SetCorpusSize(len(builder.Cases()))
	}
	return nil
}

func (e *Engine) saveSnapshot(ctx context.Context, builder *graph.Builder) error {
	snap, err := builder.Snapshot(e.cfg.EdgeThreshold)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := graph.EncodeSnapshot(&buf, snap); err != nil {
		return err
	}
	return e.snapshots.Save(ctx, buf.Bytes())
}

func (e *Engine) swap(builder *graph.Builder, stats *graph.BuildStats) {
	miner, err := NewMiner(e.cfg.Miner)
	if err != nil {
		e.log.Warn("unknown miner configured; using apriori", logging.String("miner", e.cfg.Miner))
		miner = &AprioriMiner{}
	}

	searcher := NewSearcher(e.log, builder.Cases(), builder.Embeddings())
	if e.index != nil {
		searcher = searcher.WithIndex(e.index)
	}

	st := &engineState{
		builder:  builder,
		searcher: searcher,
		analyzer: NewAnalyzer(e.log, builder.Cases(), miner),
		stats:    stats,
		builtAt:  time.Now().UTC(),
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
}

func (e *Engine) current() (*engineState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return nil, errors.NotLoaded("engine not loaded; load from store or snapshot first")
	}
	return e.state, nil
}

// Recommend runs the full pipeline for a profile: similar-case retrieval,
// the four analyses, recommendation merging, risk and winning-pattern
// extraction, and the generated explanation. Each analysis stage is
// best-effort; a failed stage yields its empty shape rather than aborting
// the call.
func (e *Engine) Recommend(ctx context.Context, profile *casefile.Profile, topK int) (*Result, error) {
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = e.cfg.TopK
	}
	start := time.Now()

	cacheKey := e.cacheKey(st, profile, topK)
	if cached := e.cachedResult(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	similar := st.searcher.FindSimilar(ctx, profile, topK)
	subset := make([]casefile.Case, len(similar))
	for i := range similar {
		subset[i] = similar[i].Case
	}

	argPatterns := st.analyzer.ArgumentPatterns(subset)

	// Favorable outcomes may be rare, so the support floor tracks half the
	// corpus base rate with an absolute floor; a fixed default would
	// exclude every interesting rule in a skewed corpus.
	rules, err := st.analyzer.AssociationRules(e.dynamicSupport(st), e.cfg.MinConfidence)
	if err != nil {
		e.log.Warn("rule mining failed; continuing without rules", logging.Err(err))
		rules = nil
	}

	counterfactuals := st.analyzer.Counterfactuals(subset)
	prob := st.analyzer.SuccessProbability(profile, similar)
	recommendations := buildRecommendations(profile, counterfactuals, rules)
	risk := assessRisk(similar, prob)
	winning := winningPatterns(similar)
	explanation := buildExplanation(profile, similar, prob, recommendations, risk)

	topRules := rules
	if len(topRules) > 10 {
		topRules = topRules[:10]
	}
	result := &Result{
		SimilarCases:     slimCases(similar),
		Probability:      prob,
		Risk:             risk,
		WinningPatterns:  winning,
		Recommendations:  recommendations,
		ArgumentPatterns: argPatterns,
		AssociationRules: topRules,
		Counterfactuals:  counterfactuals,
		Explanation:      explanation,
	}

	e.storeResult(ctx, cacheKey, result)
	if e.metrics != nil {
		e.metrics.ObserveRecommend(time.Since(start).Seconds())
	}
	return result, nil
}

// GraphData returns node, edge, and highlight data for an external
// renderer. It reads the in-memory graph only; pattern mining and
// counterfactual analysis never run here, keeping a visualization refresh
// O(cases).
func (e *Engine) GraphData(ctx context.Context, profile *casefile.Profile, topKHighlight int) (*GraphData, error) {
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	if topKHighlight <= 0 {
		topKHighlight = e.cfg.TopK
	}

	cases := st.builder.Cases()
	nodes := make([]GraphNode, len(cases))
	for i := range cases {
		c := &cases[i]
		args := c.ArgumentsMade
		if args == nil {
			args = []string{}
		}
		nodes[i] = GraphNode{
			ID:            c.Index,
			X:             c.X2D,
			Y:             c.Y2D,
			Outcome:       string(c.Outcome),
			JobTitle:      c.JobTitle,
			CompanyType:   string(c.CompanyType),
			WageLevel:     c.WageLevel.String(),
			CaseNumber:    c.CaseNumber,
			ArgumentsMade: args,
		}
	}

	pairs := st.builder.Graph().SimilarPairs()
	edges := make([]GraphEdge, len(pairs))
	for i, p := range pairs {
		edges[i] = GraphEdge{Source: p.Source, Target: p.Target, Weight: round3(p.Weight)}
	}

	similarIDs := []int{}
	var userX, userY float64
	if profile != nil {
		similar := st.searcher.FindSimilar(ctx, profile, topKHighlight)
		for i := range similar {
			similarIDs = append(similarIDs, similar[i].Index)
		}
		top := similar
		if len(top) > 5 {
			top = top[:5]
		}
		if len(top) > 0 {
			var totalW float64
			for i := range top {
				totalW += top[i].SimilarityScore
			}
			if totalW == 0 {
				totalW = 1.0
			}
			for i := range top {
				userX += top[i].X2D * top[i].SimilarityScore
				userY += top[i].Y2D * top[i].SimilarityScore
			}
			userX /= totalW
			userY /= totalW
		}
	} else if len(nodes) > 0 {
		for i := range nodes {
			userX += nodes[i].X
			userY += nodes[i].Y
		}
		userX /= float64(len(nodes))
		userY /= float64(len(nodes))
	}

	return &GraphData{
		Nodes:      nodes,
		Edges:      edges,
		UserNode:   UserNode{X: round4(userX), Y: round4(userY)},
		SimilarIDs: similarIDs,
	}, nil
}

// dynamicSupport lowers the configured support floor toward half the
// favorable base rate, bounded below by 0.03.
func (e *Engine) dynamicSupport(st *engineState) float64 {
	corpus := st.builder.Cases()
	if len(corpus) == 0 {
		return e.cfg.MinSupport
	}
	var favorable int
	for i := range corpus {
		if corpus[i].Favorable() {
			favorable++
		}
	}
	support := (float64(favorable) / float64(len(corpus))) * 0.5
	if support < 0.03 {
		support = 0.03
	}
	return support
}

func (e *Engine) cacheKey(st *engineState, profile *casefile.Profile, topK int) string {
	if e.cache == nil {
		return ""
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return ""
	}
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(strconv.Itoa(topK)))
	h.Write([]byte(st.builtAt.Format(time.RFC3339Nano)))
	return "recommend:" + hex.EncodeToString(h.Sum(nil))
}

func (e *Engine) cachedResult(ctx context.Context, key string) *Result {
	if e.cache == nil || key == "" {
		return nil
	}
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		e.log.Warn("recommendation cache read failed", logging.Err(err))
		return nil
	}
	if data == nil {
		return nil
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		e.log.Warn("recommendation cache entry malformed; recomputing", logging.Err(err))
		return nil
	}
	return &result
}

func (e *Engine) storeResult(ctx context.Context, key string, result *Result) {
	if e.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, data, recommendCacheTTL); err != nil {
		e.log.Warn("recommendation cache write failed", logging.Err(err))
	}
}

// buildRecommendations merges counterfactual-derived and rule-derived
// argument additions into one list ranked by impact. Arguments the profile
// already carries are excluded; when both sources surface an argument the
// first-seen entry wins and its confidence is only ever upgraded.
func buildRecommendations(profile *casefile.Profile, counterfactuals []Counterfactual, rules []Rule) []Recommendation {
	type scored struct {
		rec Recommendation
		raw float64
	}
	var recs []scored
	find := func(arg string) *scored {
		for i := range recs {
			if recs[i].rec.Add == arg {
				return &recs[i]
			}
		}
		return nil
	}

	for _, cf := range counterfactuals {
		if profile != nil && profile.HasArgument(cf.Argument) {
			continue
		}
		if cf.Impact <= 0 || cf.WithCount < 2 {
			continue
		}
		recs = append(recs, scored{
			rec: Recommendation{
				Add:             cf.Argument,
				Impact:          fmt.Sprintf("+%d%% success rate", int(math.Round(cf.Impact*100))),
				WithSuccessRate: cf.WithSuccessRate,
				SampleSize:      cf.WithCount,
				Confidence:      cf.Confidence,
				Source:          SourceCounterfactual,
			},
			raw: cf.Impact,
		})
	}

	for _, rule := range rules {
		for _, arg := range rule.ArgumentItems() {
			if profile != nil && profile.HasArgument(arg) {
				continue
			}
			if existing := find(arg); existing != nil {
				if rule.Confidence > 0.7 &&
					(existing.rec.Confidence == ConfidenceLow || existing.rec.Confidence == ConfidenceVeryLow) {
					existing.rec.Confidence = ConfidenceMedium
				}
				continue
			}
			recs = append(recs, scored{
				rec: Recommendation{
					Add:             arg,
					Impact:          fmt.Sprintf("appears in %d%%-confidence winning rule", int(math.Round(rule.Confidence*100))),
					WithSuccessRate: rule.Confidence,
					SampleSize:      rule.SampleSize,
					Confidence:      ConfidenceLabel(rule.SampleSize),
					Source:          SourceAssociationRule,
				},
				raw: rule.Confidence * 0.5,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].raw > recs[j].raw })

	out := make([]Recommendation, len(recs))
	for i := range recs {
		out[i] = recs[i].rec
	}
	return out
}

// assessRisk renders the one-line risk summary from the unfavorable rate
// in the similar set and the probability estimate.
func assessRisk(similar []casefile.RankedCase, prob *ProbabilityEstimate) string {
	total := len(similar)
	var unfavorable int
	for i := range similar {
		if similar[i].Outcome == casefile.OutcomeUnfavorable {
			unfavorable++
		}
	}
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(unfavorable) / float64(total) * 100))
	}
	probPct := int(math.Round(prob.Probability * 100))
	return fmt.Sprintf("%d%% unfavorable rate among %d similar cases. Estimated success probability: %d%%.", pct, total, probPct)
}

// winningPatterns groups favorable similar cases by their exact argument
// set and ranks the top combinations. The success-rate denominator also
// counts unfavorable cases whose arguments contain the combination as a
// subset, so a combination common in losses scores conservatively even
// when every exact match won.
func winningPatterns(similar []casefile.RankedCase) []WinningPattern {
	type combo struct {
		key   string
		args  []string
		count int
	}
	byKey := make(map[string]*combo)
	for i := range similar {
		if !similar[i].Favorable() || len(similar[i].ArgumentsMade) == 0 {
			continue
		}
		args := append([]string(nil), similar[i].ArgumentsMade...)
		sort.Strings(args)
		key := strings.Join(args, "\x1f")
		c := byKey[key]
		if c == nil {
			c = &combo{key: key, args: args}
			byKey[key] = c
		}
		c.count++
	}
	if len(byKey) == 0 {
		return nil
	}

	combos := make([]*combo, 0, len(byKey))
	for _, c := range byKey {
		combos = append(combos, c)
	}
	sort.SliceStable(combos, func(i, j int) bool {
		if combos[i].count != combos[j].count {
			return combos[i].count > combos[j].count
		}
		return combos[i].key < combos[j].key
	})
	if len(combos) > 5 {
		combos = combos[:5]
	}

	patterns := make([]WinningPattern, 0, len(combos))
	for _, c := range combos {
		var unfavorableWith int
		for i := range similar {
			if similar[i].Outcome != casefile.OutcomeUnfavorable {
				continue
			}
			if containsAll(similar[i].ArgumentsMade, c.args) {
				unfavorableWith++
			}
		}
		totalWith := c.count + unfavorableWith
		rate := 0.0
		if totalWith > 0 {
			rate = float64(c.count) / float64(totalWith)
		}
		patterns = append(patterns, WinningPattern{
			Arguments:      c.args,
			SuccessRate:    round3(rate),
			FavorableCount: c.count,
			SampleSize:     totalWith,
		})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].SuccessRate > patterns[j].SuccessRate
	})
	return patterns
}

// slimCases projects the top similar cases onto the output field set.
func slimCases(similar []casefile.RankedCase) []SlimCase {
	n := len(similar)
	if n > 10 {
		n = 10
	}
	out := make([]SlimCase, n)
	for i := 0; i < n; i++ {
		c := &similar[i]
		out[i] = SlimCase{
			CaseNumber:      c.CaseNumber,
			Outcome:         c.Outcome,
			JobTitle:        c.JobTitle,
			CompanyName:     c.CompanyName,
			CompanyType:     c.CompanyType,
			WageLevel:       c.WageLevel,
			RFEIssues:       c.RFEIssues,
			ArgumentsMade:   c.ArgumentsMade,
			SimilarityScore: c.SimilarityScore,
			DecisionDate:    c.DecisionDate,
			ServiceCenter:   c.ServiceCenter,
		}
	}
	return out
}
