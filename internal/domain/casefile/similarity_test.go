package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, TokenJaccard("Software Engineer", "software engineer"), 1e-9)
	// {software, engineer} vs {software, developer}: 1 shared of 3 distinct.
	assert.InDelta(t, 1.0/3.0, TokenJaccard("software engineer", "software developer"), 1e-9)
	assert.Equal(t, 0.0, TokenJaccard("", "software engineer"))
	assert.Equal(t, 0.0, TokenJaccard("", ""))
}

func TestSetJaccard(t *testing.T) {
	assert.InDelta(t, 0.5, SetJaccard([]string{"specialty_occupation", "wage_level"}, []string{"specialty_occupation"}), 1e-9)
	assert.Equal(t, 0.0, SetJaccard(nil, nil))
	assert.Equal(t, 0.0, SetJaccard([]string{"a"}, nil))
	assert.InDelta(t, 1.0, SetJaccard([]string{"a", "b"}, []string{"b", "a"}), 1e-9)
}

func TestWageLevelSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, WageLevelSimilarity(WageII, WageII), 1e-9)
	assert.InDelta(t, 2.0/3.0, WageLevelSimilarity(WageI, WageII), 1e-9)
	assert.InDelta(t, 0.0, WageLevelSimilarity(WageI, WageIV), 1e-9)
	assert.Equal(t, 0.0, WageLevelSimilarity(WageUnset, WageII))
	assert.Equal(t, 0.0, WageLevelSimilarity(WageII, WageUnset))
}

func TestCompanyTypeSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, CompanyTypeSimilarity(CompanyConsulting, CompanyConsulting))
	assert.Equal(t, 0.0, CompanyTypeSimilarity(CompanyConsulting, CompanyStaffing))
}

func TestMetadataSimilarity_SinglePresentField(t *testing.T) {
	// When only one profile field is present, its weight renormalizes to 1.0:
	// a matching case scores exactly 1.0 and a non-matching case 0.0.
	p := &Profile{CompanyType: CompanyConsulting}

	match := &Case{CompanyType: CompanyConsulting}
	miss := &Case{CompanyType: CompanyDirectEmployer}

	assert.InDelta(t, 1.0, MetadataSimilarity(p, match), 1e-9)
	assert.InDelta(t, 0.0, MetadataSimilarity(p, miss), 1e-9)
}

func TestMetadataSimilarity_AllFields(t *testing.T) {
	p := &Profile{
		JobTitle:    "software engineer",
		CompanyType: CompanyConsulting,
		WageLevel:   WageI,
		RFEIssues:   []string{"specialty_occupation", "wage_level"},
	}
	c := &Case{
		JobTitle:    "software engineer",
		CompanyType: CompanyConsulting,
		WageLevel:   WageI,
		RFEIssues:   []string{"specialty_occupation", "wage_level"},
	}
	assert.InDelta(t, 1.0, MetadataSimilarity(p, c), 1e-9)

	// Identical except the RFE issue sets share one of three distinct issues.
	c2 := &Case{
		JobTitle:    "software engineer",
		CompanyType: CompanyConsulting,
		WageLevel:   WageI,
		RFEIssues:   []string{"specialty_occupation", "maintenance_of_status"},
	}
	want := 0.30 + 0.20 + 0.15 + 0.35*(1.0/3.0)
	assert.InDelta(t, want, MetadataSimilarity(p, c2), 1e-9)
}

func TestMetadataSimilarity_Renormalization(t *testing.T) {
	// Job title and RFE issues present: weights 0.30 and 0.35 rescale to sum 1.
	p := &Profile{
		JobTitle:  "data analyst",
		RFEIssues: []string{"specialty_occupation"},
	}
	c := &Case{
		JobTitle:  "data analyst",
		RFEIssues: []string{"wage_level"},
	}
	want := (0.30*1.0 + 0.35*0.0) / (0.30 + 0.35)
	assert.InDelta(t, want, MetadataSimilarity(p, c), 1e-9)
}

func TestMetadataSimilarity_ParsedEmptyCompanyTypeExcluded(t *testing.T) {
	// A request with no company_type goes through ParseCompanyType(""); the
	// field must stay unset and drop out of scoring, so the profile compares
	// identically against an unknown-company case and a consulting case with
	// the same job title.
	p := &Profile{
		JobTitle:    "software engineer",
		CompanyType: ParseCompanyType(""),
	}
	unknown := &Case{JobTitle: "software engineer", CompanyType: CompanyUnknown}
	consulting := &Case{JobTitle: "software engineer", CompanyType: CompanyConsulting}

	assert.InDelta(t, 1.0, MetadataSimilarity(p, unknown), 1e-9)
	assert.InDelta(t, 1.0, MetadataSimilarity(p, consulting), 1e-9)
}

func TestMetadataSimilarity_EmptyProfile(t *testing.T) {
	p := &Profile{}
	c := &Case{JobTitle: "attorney", CompanyType: CompanyStaffing}
	assert.Equal(t, 0.0, MetadataSimilarity(p, c))
}
