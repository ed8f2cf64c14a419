// Package usage_repo manages the per-provider usage counter rows.
package usage_repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/usage_model"
	"github.com/vcentea/crowd-analyze-with-ai/tools"

	"github.com/jmoiron/sqlx"
)

// UsageRepo represents a repository for provider usage counters.
type UsageRepo struct {
	db *sqlx.DB
}

// New creates a new UsageRepo instance with the provided database connection.
func New(db *sqlx.DB) (repo *UsageRepo) {
	return &UsageRepo{
		db: db,
	}
}

// GetUsage retrieves one provider's counter row.
func (r *UsageRepo) GetUsage(providerName string) (rec *usage_model.UsageRecord, err error) {
	rec = &usage_model.UsageRecord{}

	query := `SELECT
				provider,
				window_start,
				window_reset_at,
				count,
				reached_limit,
				minute_window_start,
				minute_count
			FROM usage_record
			WHERE provider=$1`

	if err = r.db.QueryRowx(query, providerName).Scan(
		&rec.Provider,
		&rec.WindowStart,
		&rec.WindowResetAt,
		&rec.Count,
		&rec.ReachedLimit,
		&rec.MinuteWindowStart,
		&rec.MinuteCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("usage for provider %s: %w", providerName, tools.ErrNotFound)
		}
		return nil, err
	}

	return rec, err
}

// SaveUsage upserts one provider's counter row. The row is keyed by provider
// so there is exactly one per provider.
func (r *UsageRepo) SaveUsage(rec *usage_model.UsageRecord) (err error) {

	query := `INSERT INTO usage_record
				(
				provider,
				window_start,
				window_reset_at,
				count,
				reached_limit,
				minute_window_start,
				minute_count
				)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (provider) DO UPDATE
			SET window_start=EXCLUDED.window_start,
				window_reset_at=EXCLUDED.window_reset_at,
				count=EXCLUDED.count,
				reached_limit=EXCLUDED.reached_limit,
				minute_window_start=EXCLUDED.minute_window_start,
				minute_count=EXCLUDED.minute_count`

	_, err = r.db.Exec(query,
		rec.Provider,
		rec.WindowStart,
		rec.WindowResetAt,
		rec.Count,
		rec.ReachedLimit,
		rec.MinuteWindowStart,
		rec.MinuteCount,
	)
	if err != nil {
		return err
	}

	return err
}
