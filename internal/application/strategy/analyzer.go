package strategy

import (
	"sort"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
)

// Confidence labels bucket any statistic by the sample size behind it.
const (
	ConfidenceVeryLow  = "very_low"
	ConfidenceLow      = "low"
	ConfidenceMedium   = "medium"
	ConfidenceHigh     = "high"
	ConfidenceVeryHigh = "very_high"
)

// ConfidenceLabel maps a sample size to its qualitative bucket.
func ConfidenceLabel(n int) string {
	switch {
	case n < 3:
		return ConfidenceVeryLow
	case n < 5:
		return ConfidenceLow
	case n < 10:
		return ConfidenceMedium
	case n < 20:
		return ConfidenceHigh
	default:
		return ConfidenceVeryHigh
	}
}

// argBoostDamping scales each positive counterfactual impact before it is
// added to the base probability, so no single signal is over-credited.
const argBoostDamping = 0.3

// ArgumentStat is the per-argument outcome tally over a case subset.
type ArgumentStat struct {
	Argument    string  `json:"argument"`
	SuccessRate float64 `json:"success_rate"`
	Favorable   int     `json:"favorable"`
	Unfavorable int     `json:"unfavorable"`
	Remanded    int     `json:"remanded"`
	Total       int     `json:"total"`
	Confidence  string  `json:"confidence"`
}

// Counterfactual compares favorable rates between cases that used an
// argument and cases that did not. Impact is the rate difference, in
// [-1, 1].
type Counterfactual struct {
	Argument           string  `json:"argument"`
	WithCount          int     `json:"with_count"`
	WithoutCount       int     `json:"without_count"`
	WithSuccessRate    float64 `json:"with_success_rate"`
	WithoutSuccessRate float64 `json:"without_success_rate"`
	Impact             float64 `json:"impact"`
	Confidence         string  `json:"confidence"`
}

// ProbabilityEstimate is the blended favorable-outcome estimate for a
// profile, clamped to [0, 1].
type ProbabilityEstimate struct {
	Probability        float64 `json:"probability"`
	BaseProbability    float64 `json:"base_probability"`
	ArgumentBoost      float64 `json:"argument_boost"`
	FavorableInSimilar int     `json:"favorable_in_similar"`
	SampleSize         int     `json:"sample_size"`
	Confidence         string  `json:"confidence,omitempty"`
	Basis              string  `json:"basis,omitempty"`
}

// Analyzer computes outcome statistics, counterfactual impacts, and the
// success-probability estimate. Every analysis is a pure function of the
// case list it is handed; the full corpus is held only for rule mining.
type Analyzer struct {
	log    logging.Logger
	corpus []casefile.Case
	miner  RuleMiner
}

// NewAnalyzer constructs an analyzer over an immutable corpus snapshot.
func NewAnalyzer(log logging.Logger, corpus []casefile.Case, miner RuleMiner) *Analyzer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if miner == nil {
		miner = &AprioriMiner{}
	}
	return &Analyzer{log: log, corpus: corpus, miner: miner}
}

// ArgumentPatterns tallies per-argument outcomes over a case subset and
// returns them sorted by success rate descending.
func (a *Analyzer) ArgumentPatterns(cases []casefile.Case) []ArgumentStat {
	tally := make(map[string]*ArgumentStat)
	for i := range cases {
		c := &cases[i]
		for _, arg := range c.ArgumentsMade {
			s := tally[arg]
			if s == nil {
				s = &ArgumentStat{Argument: arg}
				tally[arg] = s
			}
			s.Total++
			switch c.Outcome {
			case casefile.OutcomeFavorable:
				s.Favorable++
			case casefile.OutcomeUnfavorable:
				s.Unfavorable++
			case casefile.OutcomeRemanded:
				s.Remanded++
			}
		}
	}

	out := make([]ArgumentStat, 0, len(tally))
	for _, s := range tally {
		if s.Total > 0 {
			s.SuccessRate = round3(float64(s.Favorable) / float64(s.Total))
		}
		s.Confidence = ConfidenceLabel(s.Total)
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate > out[j].SuccessRate
		}
		return out[i].Argument < out[j].Argument
	})
	return out
}

// AssociationRules mines favorable-outcome rules over the full corpus.
func (a *Analyzer) AssociationRules(minSupport, minConfidence float64) ([]Rule, error) {
	rules, err := a.miner.Mine(a.corpus, minSupport, minConfidence)
	if err != nil {
		return nil, err
	}
	a.log.Debug("association rules mined",
		logging.String("miner", a.miner.Name()),
		logging.Int("rules", len(rules)),
		logging.Float64("min_support", minSupport),
		logging.Float64("min_confidence", minConfidence),
	)
	return rules, nil
}

// Counterfactuals partitions a case subset by argument presence and reports
// the favorable-rate difference per argument, sorted by impact descending.
// A nil subset analyzes the full corpus.
func (a *Analyzer) Counterfactuals(cases []casefile.Case) []Counterfactual {
	if cases == nil {
		cases = a.corpus
	}

	args := make(map[string]struct{})
	for i := range cases {
		for _, arg := range cases[i].ArgumentsMade {
			args[arg] = struct{}{}
		}
	}

	out := make([]Counterfactual, 0, len(args))
	for arg := range args {
		var withCount, withFav, withoutCount, withoutFav int
		for i := range cases {
			c := &cases[i]
			if c.UsedArgument(arg) {
				withCount++
				if c.Favorable() {
					withFav++
				}
			} else {
				withoutCount++
				if c.Favorable() {
					withoutFav++
				}
			}
		}

		var withRate, withoutRate float64
		if withCount > 0 {
			withRate = float64(withFav) / float64(withCount)
		}
		if withoutCount > 0 {
			withoutRate = float64(withoutFav) / float64(withoutCount)
		}
		out = append(out, Counterfactual{
			Argument:           arg,
			WithCount:          withCount,
			WithoutCount:       withoutCount,
			WithSuccessRate:    round3(withRate),
			WithoutSuccessRate: round3(withoutRate),
			Impact:             round3(withRate - withoutRate),
			Confidence:         ConfidenceLabel(withCount),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Impact != out[j].Impact {
			return out[i].Impact > out[j].Impact
		}
		return out[i].Argument < out[j].Argument
	})
	return out
}

// SuccessProbability estimates the favorable-outcome probability for a
// profile from its ranked similar cases: a similarity-weighted average of
// outcome indicators, boosted by dampened positive counterfactual impacts
// of the arguments the profile already carries, clamped to [0, 1]. Zero
// similar cases returns a zero estimate, not an error.
func (a *Analyzer) SuccessProbability(profile *casefile.Profile, similar []casefile.RankedCase) *ProbabilityEstimate {
	if len(similar) == 0 {
		return &ProbabilityEstimate{Basis: "no similar cases"}
	}

	var weightSum, weighted float64
	var favorable int
	for i := range similar {
		outcome := 0.0
		if similar[i].Favorable() {
			outcome = 1.0
			favorable++
		}
		weightSum += similar[i].SimilarityScore
		weighted += similar[i].SimilarityScore * outcome
	}

	var base float64
	if weightSum == 0 {
		base = float64(favorable) / float64(len(similar))
	} else {
		base = weighted / weightSum
	}

	subset := make([]casefile.Case, len(similar))
	for i := range similar {
		subset[i] = similar[i].Case
	}
	var boost float64
	for _, cf := range a.Counterfactuals(subset) {
		if cf.Impact > 0 && profile != nil && profile.HasArgument(cf.Argument) {
			boost += cf.Impact * argBoostDamping
		}
	}

	adjusted := base + boost
	if adjusted > 1.0 {
		adjusted = 1.0
	}
	if adjusted < 0.0 {
		adjusted = 0.0
	}

	return &ProbabilityEstimate{
		Probability:        round3(adjusted),
		BaseProbability:    round3(base),
		ArgumentBoost:      round3(boost),
		FavorableInSimilar: favorable,
		SampleSize:         len(similar),
		Confidence:         ConfidenceLabel(len(similar)),
	}
}
