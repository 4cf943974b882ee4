package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

// CaseStore loads the adjudicated-case corpus from PostgreSQL. Only rows
// whose extraction pipeline has completed and produced an embedding are
// part of the corpus; partial rows are invisible to the engine.
type CaseStore struct {
	pool  *pgxpool.Pool
	table string
	log   logging.Logger
}

// NewCaseStore constructs a store reading from the given table.
func NewCaseStore(pool *pgxpool.Pool, table string, log logging.Logger) *CaseStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if table == "" {
		table = "cases"
	}
	return &CaseStore{pool: pool, table: table, log: log}
}

// FetchCases returns the corpus ordered by primary key, assigning each
// case its contiguous corpus index, together with the aligned raw
// embedding matrix.
func (s *CaseStore) FetchCases(ctx context.Context) ([]casefile.Case, [][]float64, error) {
	query := fmt.Sprintf(`
		SELECT
			COALESCE(case_number, ''),
			COALESCE(outcome, ''),
			COALESCE(decision_date::text, ''),
			COALESCE(service_center, ''),
			COALESCE(job_title, ''),
			COALESCE(company_name, ''),
			COALESCE(company_type, ''),
			COALESCE(wage_level, ''),
			COALESCE(rfe_issues, '{}'),
			COALESCE(denial_reasons, '{}'),
			COALESCE(arguments_made, '{}'),
			COALESCE(filename, ''),
			COALESCE(x_2d, 0),
			COALESCE(y_2d, 0),
			embedding
		FROM %s
		WHERE status = 'complete' AND embedding IS NOT NULL
		ORDER BY id`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "query cases")
	}
	defer rows.Close()

	var cases []casefile.Case
	var embeddings [][]float64
	for rows.Next() {
		var c casefile.Case
		var outcome, companyType, wageLvl string
		var embedding pgvector.Vector
		err := rows.Scan(
			&c.CaseNumber, &outcome, &c.DecisionDate, &c.ServiceCenter,
			&c.JobTitle, &c.CompanyName, &companyType, &wageLvl,
			&c.RFEIssues, &c.DenialReasons, &c.ArgumentsMade,
			&c.Filename, &c.X2D, &c.Y2D, &embedding,
		)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan case row")
		}
		c.Index = len(cases)
		c.Outcome = casefile.ParseOutcome(outcome)
		c.CompanyType = casefile.ParseCompanyType(companyType)
		c.WageLevel = casefile.ParseWageLevel(wageLvl)

		vec := embedding.Slice()
		emb := make([]float64, len(vec))
		for i, v := range vec {
			emb[i] = float64(v)
		}
		cases = append(cases, c)
		embeddings = append(embeddings, emb)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterate case rows")
	}

	s.log.Info("fetched case corpus",
		logging.String("table", s.table),
		logging.Int("cases", len(cases)),
	)
	return cases, embeddings, nil
}
