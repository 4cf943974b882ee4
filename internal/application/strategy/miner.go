package strategy

import (
	"sort"
	"strings"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/pkg/errors"
)

// Transaction item prefixes. Each case becomes one transaction of tagged
// feature items plus its outcome item; rules are mined over those
// transactions.
const (
	itemCompanyType = "comptype:"
	itemWageLevel   = "wage:"
	itemRFEIssue    = "rfe:"
	itemArgument    = "arg:"
	itemOutcome     = "outcome:"
)

// favorableItem is the only rule consequent callers care about.
var favorableItem = itemOutcome + string(casefile.OutcomeFavorable)

// Rule is one mined association rule whose consequent is the favorable
// outcome. Antecedent items keep their type prefix so callers can tell an
// argument from an RFE issue.
type Rule struct {
	Antecedent []string `json:"antecedent"`
	Confidence float64  `json:"confidence"`
	Support    float64  `json:"support"`
	Lift       float64  `json:"lift"`
	SampleSize int      `json:"sample_size"`
}

// ArgumentItems extracts the bare argument tags from the antecedent.
func (r *Rule) ArgumentItems() []string {
	var out []string
	for _, item := range r.Antecedent {
		if strings.HasPrefix(item, itemArgument) {
			out = append(out, strings.TrimPrefix(item, itemArgument))
		}
	}
	return out
}

// RuleMiner mines favorable-outcome association rules from a case list.
// Both implementations produce the same Rule shape so the engine never
// branches on which is active.
type RuleMiner interface {
	Mine(cases []casefile.Case, minSupport, minConfidence float64) ([]Rule, error)
	Name() string
}

// NewMiner selects the miner implementation by configured name.
func NewMiner(name string) (RuleMiner, error) {
	switch name {
	case "", "apriori":
		return &AprioriMiner{}, nil
	case "cooccurrence":
		return &CooccurrenceMiner{}, nil
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unknown rule miner: "+name)
	}
}

// transaction converts one case to its sorted, deduplicated item set.
func transaction(c *casefile.Case) []string {
	set := make(map[string]struct{})
	if c.CompanyType != "" {
		set[itemCompanyType+string(c.CompanyType)] = struct{}{}
	}
	if c.WageLevel.IsSet() {
		set[itemWageLevel+c.WageLevel.String()] = struct{}{}
	}
	for _, issue := range c.RFEIssues {
		set[itemRFEIssue+issue] = struct{}{}
	}
	for _, arg := range c.ArgumentsMade {
		set[itemArgument+arg] = struct{}{}
	}
	outcome := c.Outcome
	if outcome == "" {
		outcome = casefile.OutcomeUnknown
	}
	set[itemOutcome+string(outcome)] = struct{}{}

	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(a, b int) bool {
		if rules[a].Confidence != rules[b].Confidence {
			return rules[a].Confidence > rules[b].Confidence
		}
		if rules[a].Support != rules[b].Support {
			return rules[a].Support > rules[b].Support
		}
		return strings.Join(rules[a].Antecedent, "\x1f") < strings.Join(rules[b].Antecedent, "\x1f")
	})
}

// AprioriMiner performs levelwise frequent-itemset mining and derives
// rules of the form (antecedent => favorable outcome) with support,
// confidence, and lift.
type AprioriMiner struct{}

// Name implements RuleMiner.
func (m *AprioriMiner) Name() string { return "apriori" }

// Mine implements RuleMiner.
func (m *AprioriMiner) Mine(cases []casefile.Case, minSupport, minConfidence float64) ([]Rule, error) {
	if len(cases) == 0 {
		return nil, nil
	}

	transactions := make([][]string, len(cases))
	for i := range cases {
		transactions[i] = transaction(&cases[i])
	}

	frequent := frequentItemsets(transactions, minSupport)
	if len(frequent) == 0 {
		return nil, nil
	}

	n := float64(len(transactions))
	favSupport := frequent[favorableItem]

	var rules []Rule
	for key, support := range frequent {
		items := splitKey(key)
		if len(items) < 2 || !contains(items, favorableItem) {
			continue
		}
		antecedent := remove(items, favorableItem)
		antSupport, ok := frequent[joinKey(antecedent)]
		if !ok || antSupport == 0 {
			continue
		}
		confidence := support / antSupport
		if confidence < minConfidence {
			continue
		}
		lift := 0.0
		if favSupport > 0 {
			lift = confidence / favSupport
		}
		rules = append(rules, Rule{
			Antecedent: antecedent,
			Confidence: round3(confidence),
			Support:    round3(support),
			Lift:       round3(lift),
			SampleSize: int(support*n + 0.5),
		})
	}
	sortRules(rules)
	return rules, nil
}

// frequentItemsets runs the levelwise apriori scan, returning relative
// support keyed by joined itemset. Candidate growth is pruned by the
// frequent sets of the previous level, so the scan stays tractable for the
// small transaction sets this corpus produces.
func frequentItemsets(transactions [][]string, minSupport float64) map[string]float64 {
	n := float64(len(transactions))
	out := make(map[string]float64)

	// Level 1.
	counts := make(map[string]int)
	for _, tx := range transactions {
		for _, item := range tx {
			counts[item]++
		}
	}
	var current [][]string
	for item, c := range counts {
		if float64(c)/n >= minSupport {
			out[item] = float64(c) / n
			current = append(current, []string{item})
		}
	}
	sort.Slice(current, func(a, b int) bool { return current[a][0] < current[b][0] })

	for len(current) > 0 {
		candidates := growCandidates(current)
		if len(candidates) == 0 {
			break
		}
		levelCounts := make(map[string]int, len(candidates))
		for _, cand := range candidates {
			key := joinKey(cand)
			for _, tx := range transactions {
				if containsAll(tx, cand) {
					levelCounts[key]++
				}
			}
		}
		current = current[:0]
		for _, cand := range candidates {
			key := joinKey(cand)
			if float64(levelCounts[key])/n >= minSupport {
				out[key] = float64(levelCounts[key]) / n
				current = append(current, cand)
			}
		}
	}
	return out
}

// growCandidates joins frequent k-itemsets sharing a (k-1)-prefix into
// (k+1)-candidates, the classic apriori join over lexicographically sorted
// itemsets.
func growCandidates(frequent [][]string) [][]string {
	var out [][]string
	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			a, b := frequent[i], frequent[j]
			k := len(a)
			if !equalPrefix(a, b, k-1) || a[k-1] >= b[k-1] {
				continue
			}
			cand := make([]string, k+1)
			copy(cand, a)
			cand[k] = b[k-1]
			out = append(out, cand)
		}
	}
	return out
}

// CooccurrenceMiner is the brute-force fallback: it scans singleton and
// pairwise feature combinations (outcome items excluded from antecedents),
// keeping combinations observed at least twice whose favorable rate clears
// the confidence floor. Lift is computed against the corpus-wide favorable
// base rate.
type CooccurrenceMiner struct{}

// Name implements RuleMiner.
func (m *CooccurrenceMiner) Name() string { return "cooccurrence" }

// Mine implements RuleMiner.
func (m *CooccurrenceMiner) Mine(cases []casefile.Case, minSupport, minConfidence float64) ([]Rule, error) {
	if len(cases) == 0 {
		return nil, nil
	}

	type comboStat struct {
		favorable int
		total     int
	}
	stats := make(map[string]*comboStat)
	var favorableTotal int

	for i := range cases {
		c := &cases[i]
		if c.Favorable() {
			favorableTotal++
		}
		var features []string
		if c.CompanyType != "" {
			features = append(features, itemCompanyType+string(c.CompanyType))
		}
		for _, arg := range c.ArgumentsMade {
			features = append(features, itemArgument+arg)
		}
		for _, issue := range c.RFEIssues {
			features = append(features, itemRFEIssue+issue)
		}

		tally := func(key string) {
			s := stats[key]
			if s == nil {
				s = &comboStat{}
				stats[key] = s
			}
			s.total++
			if c.Favorable() {
				s.favorable++
			}
		}
		for _, f := range features {
			tally(f)
		}
		for a := 0; a < len(features); a++ {
			for b := a + 1; b < len(features); b++ {
				pair := []string{features[a], features[b]}
				sort.Strings(pair)
				tally(joinKey(pair))
			}
		}
	}

	baseRate := float64(favorableTotal) / float64(len(cases))

	var rules []Rule
	for key, s := range stats {
		if s.total < 2 {
			continue
		}
		confidence := float64(s.favorable) / float64(s.total)
		if confidence < minConfidence {
			continue
		}
		lift := 0.0
		if baseRate > 0 {
			lift = confidence / baseRate
		}
		rules = append(rules, Rule{
			Antecedent: splitKey(key),
			Confidence: round3(confidence),
			Support:    round3(float64(s.total) / float64(len(cases))),
			Lift:       round3(lift),
			SampleSize: s.total,
		})
	}
	sortRules(rules)
	return rules, nil
}

// Itemset key helpers. Keys join sorted items with an unprintable separator
// so map lookups stay exact.

func joinKey(items []string) string { return strings.Join(items, "\x1f") }

func splitKey(key string) []string { return strings.Split(key, "\x1f") }

func contains(items []string, target string) bool {
	for _, it := range items {
		if it == target {
			return true
		}
	}
	return false
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		if !contains(haystack, n) {
			return false
		}
	}
	return true
}

func remove(items []string, target string) []string {
	out := make([]string, 0, len(items)-1)
	for _, it := range items {
		if it != target {
			out = append(out, it)
		}
	}
	return out
}

func equalPrefix(a, b []string, k int) bool {
	for i := 0; i < k; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
