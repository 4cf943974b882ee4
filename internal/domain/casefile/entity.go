// Package casefile defines the adjudicated-case record, its enumerated
// attributes, and the query profile used for similarity search. Cases are
// immutable once loaded; a corpus rebuild replaces the whole list rather than
// mutating records in place.
package casefile

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Outcome is the adjudicated disposition of an appeal.
type Outcome string

const (
	OutcomeFavorable   Outcome = "FAVORABLE"
	OutcomeUnfavorable Outcome = "UNFAVORABLE"
	OutcomeRemanded    Outcome = "REMANDED"
	OutcomeUnknown     Outcome = "UNKNOWN"
)

// ParseOutcome maps a stored outcome string onto the enumeration.
// Unrecognised values become OutcomeUnknown rather than an error.
func ParseOutcome(s string) Outcome {
	switch Outcome(strings.ToUpper(strings.TrimSpace(s))) {
	case OutcomeFavorable:
		return OutcomeFavorable
	case OutcomeUnfavorable:
		return OutcomeUnfavorable
	case OutcomeRemanded:
		return OutcomeRemanded
	default:
		return OutcomeUnknown
	}
}

// CompanyType is the employer category of the filing party.
type CompanyType string

const (
	CompanyUnset          CompanyType = ""
	CompanyConsulting     CompanyType = "consulting"
	CompanyStaffing       CompanyType = "staffing"
	CompanyDirectEmployer CompanyType = "direct_employer"
	CompanyUnknown        CompanyType = "unknown"
)

// ParseCompanyType maps a stored company-type string onto the enumeration.
// Empty input stays CompanyUnset so absent fields remain excluded from
// similarity scoring; only a populated but unrecognised value becomes
// CompanyUnknown.
func ParseCompanyType(s string) CompanyType {
	switch v := CompanyType(strings.ToLower(strings.TrimSpace(s))); v {
	case CompanyUnset:
		return CompanyUnset
	case CompanyConsulting:
		return CompanyConsulting
	case CompanyStaffing:
		return CompanyStaffing
	case CompanyDirectEmployer:
		return CompanyDirectEmployer
	default:
		return CompanyUnknown
	}
}

// WageLevel is the ordered prevailing-wage tier. WageUnset models absence
// explicitly so comparators can branch on presence instead of sentinel
// strings.
type WageLevel int

const (
	WageUnset WageLevel = 0
	WageI     WageLevel = 1
	WageII    WageLevel = 2
	WageIII   WageLevel = 3
	WageIV    WageLevel = 4
)

// ParseWageLevel maps the textual wage tier ("Level I".."Level IV",
// case-insensitive) onto the ordinal scale. Unrecognised values map to
// WageUnset.
func ParseWageLevel(s string) WageLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "level i", "i", "1":
		return WageI
	case "level ii", "ii", "2":
		return WageII
	case "level iii", "iii", "3":
		return WageIII
	case "level iv", "iv", "4":
		return WageIV
	default:
		return WageUnset
	}
}

// String renders the canonical textual form; WageUnset renders empty.
func (w WageLevel) String() string {
	switch w {
	case WageI:
		return "Level I"
	case WageII:
		return "Level II"
	case WageIII:
		return "Level III"
	case WageIV:
		return "Level IV"
	default:
		return ""
	}
}

// IsSet reports whether the tier is populated.
func (w WageLevel) IsSet() bool { return w >= WageI && w <= WageIV }

// MarshalJSON renders the textual tier so snapshots and API payloads carry
// "Level II" rather than a bare ordinal.
func (w WageLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON accepts both the textual tier and the legacy bare ordinal.
func (w *WageLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = ParseWageLevel(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n >= int(WageI) && n <= int(WageIV) {
		*w = WageLevel(n)
	} else {
		*w = WageUnset
	}
	return nil
}

// Case is one adjudicated appeal record. Index is the stable ordinal
// position in the loaded corpus and doubles as the graph node key; it is
// unique and contiguous in [0, N).
//
// The embedding lives in the corpus-level matrix, aligned by Index, rather
// than on the record itself; records stay light enough to copy into result
// payloads.
type Case struct {
	Index         int         `json:"index"`
	CaseNumber    string      `json:"case_number"`
	Outcome       Outcome     `json:"outcome"`
	DecisionDate  string      `json:"decision_date"`
	ServiceCenter string      `json:"service_center"`
	JobTitle      string      `json:"job_title"`
	CompanyName   string      `json:"company_name"`
	CompanyType   CompanyType `json:"company_type"`
	WageLevel     WageLevel   `json:"wage_level"`
	RFEIssues     []string    `json:"rfe_issues"`
	DenialReasons []string    `json:"denial_reasons"`
	ArgumentsMade []string    `json:"arguments_made"`
	Filename      string      `json:"filename"`

	// X2D / Y2D are planar projection coordinates precomputed by an
	// external job; carried through for the visualization export only.
	X2D float64 `json:"x_2d"`
	Y2D float64 `json:"y_2d"`
}

// Favorable reports whether the case ended with the favorable outcome.
func (c *Case) Favorable() bool { return c.Outcome == OutcomeFavorable }

// DedupKey identifies a case across duplicate filings: the case number when
// present, otherwise the corpus index.
func (c *Case) DedupKey() string {
	if c.CaseNumber != "" {
		return c.CaseNumber
	}
	return "idx:" + strconv.Itoa(c.Index)
}

// UsedArgument reports whether the case's filer employed the given argument.
func (c *Case) UsedArgument(arg string) bool {
	for _, a := range c.ArgumentsMade {
		if a == arg {
			return true
		}
	}
	return false
}

// Profile is the query input to search and recommendation. Every field is
// optional; absent fields are excluded from similarity scoring rather than
// scored as zero. Profiles are never persisted.
type Profile struct {
	JobTitle         string      `json:"job_title"`
	CompanyType      CompanyType `json:"company_type"`
	WageLevel        WageLevel   `json:"wage_level"`
	RFEIssues        []string    `json:"rfe_issues"`
	CurrentArguments []string    `json:"current_arguments"`
}

// HasArgument reports whether the profile already includes the argument.
func (p *Profile) HasArgument(arg string) bool {
	for _, a := range p.CurrentArguments {
		if a == arg {
			return true
		}
	}
	return false
}

// RankedCase is a Case augmented with the scores produced by the hybrid
// search; all three are in [0,1] and rounded for output stability.
type RankedCase struct {
	Case
	SimilarityScore float64 `json:"similarity_score"`
	MetadataScore   float64 `json:"metadata_score"`
	EmbeddingScore  float64 `json:"embedding_score"`
}
