// Package settings_repo manages the single persisted settings row.
package settings_repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/settings_model"
	"github.com/vcentea/crowd-analyze-with-ai/tools"

	"github.com/jmoiron/sqlx"
)

// settingsRowId keys the single settings row.
const settingsRowId = 1

// SettingsRepo represents a repository for the runtime settings.
type SettingsRepo struct {
	db *sqlx.DB
}

// New creates a new SettingsRepo instance with the provided database connection.
func New(db *sqlx.DB) (repo *SettingsRepo) {
	return &SettingsRepo{
		db: db,
	}
}

// GetSettings retrieves the settings row.
func (r *SettingsRepo) GetSettings() (cfg *settings_model.Settings, err error) {
	cfg = &settings_model.Settings{}

	query := `SELECT
				active_provider,
				confidence_threshold,
				capture_interval_seconds,
				show_age,
				show_gender,
				show_emotions,
				show_engagement
			FROM settings
			WHERE id=$1`

	if err = r.db.QueryRowx(query, settingsRowId).Scan(
		&cfg.ActiveProvider,
		&cfg.ConfidenceThreshold,
		&cfg.CaptureIntervalSeconds,
		&cfg.ShowAge,
		&cfg.ShowGender,
		&cfg.ShowEmotions,
		&cfg.ShowEngagement,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings: %w", tools.ErrNotFound)
		}
		return nil, err
	}

	return cfg, err
}

// SaveSettings upserts the settings row.
func (r *SettingsRepo) SaveSettings(cfg *settings_model.Settings) (err error) {

	query := `INSERT INTO settings
				(
				id,
				active_provider,
				confidence_threshold,
				capture_interval_seconds,
				show_age,
				show_gender,
				show_emotions,
				show_engagement
				)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET active_provider=EXCLUDED.active_provider,
				confidence_threshold=EXCLUDED.confidence_threshold,
				capture_interval_seconds=EXCLUDED.capture_interval_seconds,
				show_age=EXCLUDED.show_age,
				show_gender=EXCLUDED.show_gender,
				show_emotions=EXCLUDED.show_emotions,
				show_engagement=EXCLUDED.show_engagement`

	_, err = r.db.Exec(query,
		settingsRowId,
		cfg.ActiveProvider,
		cfg.ConfidenceThreshold,
		cfg.CaptureIntervalSeconds,
		cfg.ShowAge,
		cfg.ShowGender,
		cfg.ShowEmotions,
		cfg.ShowEngagement,
	)
	if err != nil {
		return err
	}

	return err
}
