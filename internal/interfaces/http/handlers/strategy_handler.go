package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/precedex/precedex/internal/application/strategy"
	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
)

// StrategyService is the engine surface the strategy handlers depend on.
type StrategyService interface {
	Recommend(ctx context.Context, profile *casefile.Profile, topK int) (*strategy.Result, error)
	GraphData(ctx context.Context, profile *casefile.Profile, topKHighlight int) (*strategy.GraphData, error)
}

// StrategyHandler serves recommendation and graph endpoints.
type StrategyHandler struct {
	service StrategyService
	log     logging.Logger
}

func NewStrategyHandler(service StrategyService, log logging.Logger) *StrategyHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &StrategyHandler{service: service, log: log}
}

// RecommendRequest is the POST /strategy/recommend body.
type RecommendRequest struct {
	JobTitle         string   `json:"job_title"`
	CompanyType      string   `json:"company_type"`
	WageLevel        string   `json:"wage_level"`
	RFEIssues        []string `json:"rfe_issues"`
	CurrentArguments []string `json:"current_arguments"`
	TopK             int      `json:"top_k"`
}

func (r *RecommendRequest) profile() *casefile.Profile {
	return &casefile.Profile{
		JobTitle:         r.JobTitle,
		CompanyType:      casefile.ParseCompanyType(r.CompanyType),
		WageLevel:        casefile.ParseWageLevel(r.WageLevel),
		RFEIssues:        r.RFEIssues,
		CurrentArguments: r.CurrentArguments,
	}
}

// Recommend handles POST /api/v1/strategy/recommend.
func (h *StrategyHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.Recommend(c.Request.Context(), req.profile(), req.TopK)
	if err != nil {
		h.log.Warn("recommendation failed", logging.Err(err))
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Graph handles GET /api/v1/strategy/graph. The profile is optional and
// passed as query parameters; without one the user node sits at the corpus
// centroid.
func (h *StrategyHandler) Graph(c *gin.Context) {
	profile := graphProfileFromQuery(c)
	topK := parseIntQuery(c, "top_k", 0)

	data, err := h.service.GraphData(c.Request.Context(), profile, topK)
	if err != nil {
		h.log.Warn("graph export failed", logging.Err(err))
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func graphProfileFromQuery(c *gin.Context) *casefile.Profile {
	jobTitle := c.Query("job_title")
	companyType := c.Query("company_type")
	wageLevel := c.Query("wage_level")
	rfeIssues := splitCSV(c.Query("rfe_issues"))
	currentArgs := splitCSV(c.Query("current_arguments"))

	if jobTitle == "" && companyType == "" && wageLevel == "" &&
		len(rfeIssues) == 0 && len(currentArgs) == 0 {
		return nil
	}
	return &casefile.Profile{
		JobTitle:         jobTitle,
		CompanyType:      casefile.ParseCompanyType(companyType),
		WageLevel:        casefile.ParseWageLevel(wageLevel),
		RFEIssues:        rfeIssues,
		CurrentArguments: currentArgs,
	}
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
