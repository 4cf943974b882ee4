//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/precedex/precedex/internal/config"
	"github.com/precedex/precedex/internal/domain/casefile"
	"github.com/precedex/precedex/internal/infrastructure/database/postgres"
)

// startPostgres launches a pgvector-enabled PostgreSQL container and
// returns a pool with the vector codec registered.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "precedex_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/precedex_test?sslmode=disable", host, port.Port())
	poolCfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	// The extension must exist before the codec registers its OID.
	bootstrap, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, err = bootstrap.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	require.NoError(t, err)
	bootstrap.Close()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applyCaseSchema(t, pool)
	return pool
}

func applyCaseSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	ddl := `
	CREATE TABLE IF NOT EXISTS cases (
		id              BIGSERIAL PRIMARY KEY,
		case_number     TEXT,
		outcome         TEXT,
		decision_date   DATE,
		service_center  TEXT,
		job_title       TEXT,
		company_name    TEXT,
		company_type    TEXT,
		wage_level      TEXT,
		rfe_issues      TEXT[] NOT NULL DEFAULT '{}',
		denial_reasons  TEXT[] NOT NULL DEFAULT '{}',
		arguments_made  TEXT[] NOT NULL DEFAULT '{}',
		filename        TEXT,
		x_2d            DOUBLE PRECISION,
		y_2d            DOUBLE PRECISION,
		status          TEXT NOT NULL DEFAULT 'pending',
		embedding       vector(3)
	)`
	_, err := pool.Exec(ctx, ddl)
	require.NoError(t, err)
}

func TestCaseStore_FetchCases(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO cases (case_number, outcome, job_title, company_type, wage_level,
		                   rfe_issues, arguments_made, status, embedding)
		VALUES
			('APL-1', 'FAVORABLE', 'software engineer', 'consulting', 'Level II',
			 '{"specialty_occupation"}', '{"expert_letter"}', 'complete', '[1,0,0]'),
			('APL-2', 'UNFAVORABLE', 'accountant', 'staffing', NULL,
			 '{}', '{}', 'complete', '[0,1,0]'),
			('APL-3', 'FAVORABLE', 'analyst', 'consulting', 'Level I',
			 '{}', '{}', 'pending', '[0,0,1]'),
			('APL-4', 'FAVORABLE', 'engineer', 'consulting', 'Level I',
			 '{}', '{}', 'complete', NULL)`)
	require.NoError(t, err)

	store := postgres.NewCaseStore(pool, "cases", nil)
	cases, embeddings, err := store.FetchCases(ctx)
	require.NoError(t, err)

	// Pending rows and rows without embeddings are excluded.
	require.Len(t, cases, 2)
	require.Len(t, embeddings, 2)

	assert.Equal(t, 0, cases[0].Index)
	assert.Equal(t, "APL-1", cases[0].CaseNumber)
	assert.Equal(t, casefile.OutcomeFavorable, cases[0].Outcome)
	assert.Equal(t, casefile.CompanyConsulting, cases[0].CompanyType)
	assert.Equal(t, casefile.WageII, cases[0].WageLevel)
	assert.Equal(t, []string{"specialty_occupation"}, cases[0].RFEIssues)
	assert.Equal(t, []float64{1, 0, 0}, embeddings[0])

	assert.Equal(t, 1, cases[1].Index)
	assert.Equal(t, casefile.WageUnset, cases[1].WageLevel)
}

func TestConnect_BadAddress(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:   "127.0.0.1",
		Port:   1, // nothing listens here
		User:   "test",
		DBName: "precedex_test",
	}
	_, err := postgres.Connect(context.Background(), cfg, nil)
	assert.Error(t, err)
}
