package strategy

import "github.com/precedex/precedex/internal/domain/casefile"

// Recommendation sources.
const (
	SourceCounterfactual  = "counterfactual"
	SourceAssociationRule = "association_rule"
)

// Recommendation is one argument the profile should add, with the evidence
// behind it.
type Recommendation struct {
	Add             string  `json:"add"`
	Impact          string  `json:"impact"`
	WithSuccessRate float64 `json:"with_success_rate"`
	SampleSize      int     `json:"sample_size"`
	Confidence      string  `json:"confidence"`
	Source          string  `json:"source"`
}

// WinningPattern is one argument combination observed in favorable similar
// cases, with its conditional success rate.
type WinningPattern struct {
	Arguments      []string `json:"arguments"`
	SuccessRate    float64  `json:"success_rate"`
	FavorableCount int      `json:"favorable_count"`
	SampleSize     int      `json:"sample_size"`
}

// SlimCase is the reduced case projection carried in the result payload.
type SlimCase struct {
	CaseNumber      string               `json:"case_number"`
	Outcome         casefile.Outcome     `json:"outcome"`
	JobTitle        string               `json:"job_title"`
	CompanyName     string               `json:"company_name"`
	CompanyType     casefile.CompanyType `json:"company_type"`
	WageLevel       casefile.WageLevel   `json:"wage_level"`
	RFEIssues       []string             `json:"rfe_issues"`
	ArgumentsMade   []string             `json:"arguments_made"`
	SimilarityScore float64              `json:"similarity_score"`
	DecisionDate    string               `json:"decision_date"`
	ServiceCenter   string               `json:"service_center"`
}

// Result is the full recommendation payload.
type Result struct {
	SimilarCases     []SlimCase           `json:"similar_cases"`
	Probability      *ProbabilityEstimate `json:"success_probability"`
	Risk             string               `json:"current_strategy_risk"`
	WinningPatterns  []WinningPattern     `json:"winning_patterns"`
	Recommendations  []Recommendation     `json:"recommendations"`
	ArgumentPatterns []ArgumentStat       `json:"argument_patterns"`
	AssociationRules []Rule               `json:"association_rules"`
	Counterfactuals  []Counterfactual     `json:"counterfactual_analysis"`
	Explanation      string               `json:"explanation"`
}

// GraphNode is one case node in the visualization export, positioned by
// the precomputed planar projection.
type GraphNode struct {
	ID            int      `json:"id"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Outcome       string   `json:"outcome"`
	JobTitle      string   `json:"job_title"`
	CompanyType   string   `json:"company_type"`
	WageLevel     string   `json:"wage_level"`
	CaseNumber    string   `json:"case_number"`
	ArgumentsMade []string `json:"arguments_made"`
}

// GraphEdge is one undirected similarity edge in the visualization export.
type GraphEdge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// UserNode is the synthetic position of the query profile on the case map.
type UserNode struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphData is the lightweight payload an external renderer consumes.
type GraphData struct {
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	UserNode   UserNode    `json:"user_node"`
	SimilarIDs []int       `json:"similar_ids"`
}
