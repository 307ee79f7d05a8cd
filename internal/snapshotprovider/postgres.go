package snapshotprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourusername/parlay-evaluator/internal/models"
)

// Postgres is a read-only MarginalProvider/PairCorrelationProvider
// backed by a pgxpool connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pgxpool.Pool. The pool's lifecycle
// (connect/close) is owned by the caller, matching internal/database.DB.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// GetMarginals loads every stored marginal for a game.
func (p *Postgres) GetMarginals(ctx context.Context, gameID string) ([]models.Marginal, error) {
	const query = `
		SELECT subject_id, stat_kind, dist_family, mean, stddev, sample_size
		FROM marginals
		WHERE game_id = $1
	`
	rows, err := p.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query marginals: %w", err)
	}
	defer rows.Close()

	var out []models.Marginal
	for rows.Next() {
		var m models.Marginal
		if err := rows.Scan(&m.SubjectID, &m.StatKind, &m.DistFamily, &m.Mean, &m.Stddev, &m.SampleSize); err != nil {
			return nil, fmt.Errorf("failed to scan marginal: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetPairCorrelation looks up a single stored pairwise correlation.
// ok=false (no error) means the pair is absent from the snapshot, a
// recoverable value, not a failure.
func (p *Postgres) GetPairCorrelation(ctx context.Context, a, b models.LegKey) (float64, bool, error) {
	key := models.CorrelationKey{A: a, B: b}.Normalized()

	const query = `
		SELECT rho FROM pair_correlations
		WHERE subject_a = $1 AND stat_a = $2 AND subject_b = $3 AND stat_b = $4
	`
	var rho float64
	err := p.pool.QueryRow(ctx, query, key.A.SubjectID, key.A.StatKind, key.B.SubjectID, key.B.StatKind).Scan(&rho)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to query pair correlation: %w", err)
	}
	return rho, true, nil
}
