// Package capture_repo manages the capture history table. Canonical faces
// and the raw provider payload are stored as JSONB alongside the flattened
// aggregate columns.
package capture_repo

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
	"github.com/vcentea/crowd-analyze-with-ai/tools"

	"github.com/jmoiron/sqlx"
)

// CaptureRepo represents a repository for stored frame analyses.
type CaptureRepo struct {
	db *sqlx.DB
}

// New creates a new CaptureRepo instance with the provided database connection.
func New(db *sqlx.DB) (repo *CaptureRepo) {
	return &CaptureRepo{
		db: db,
	}
}

// CreateCapture inserts one analyzed frame and returns its id.
func (r *CaptureRepo) CreateCapture(capture *face_model.Capture) (id int, err error) {

	facesJSON, err := json.Marshal(capture.Faces)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO capture
				(
				captured_at,
				provider,
				people_count,
				average_age,
				male_percentage,
				female_percentage,
				primary_emotion,
				primary_emotion_percentage,
				engagement_score,
				attention_time,
				faces,
				raw_response
				)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`

	row := r.db.QueryRowx(query,
		capture.Timestamp,
		capture.Provider,
		capture.PeopleCount,
		capture.AverageAge,
		capture.MalePercentage,
		capture.FemalePercentage,
		(*string)(capture.PrimaryEmotion),
		capture.PrimaryEmotionPercentage,
		capture.EngagementScore,
		capture.AttentionTime,
		facesJSON,
		[]byte(capture.RawProviderResponse),
	)
	if err = row.Scan(&id); err != nil {
		return 0, err
	}

	return id, err
}

// GetCaptures retrieves the newest captures first. A limit of 0 returns the
// whole history.
func (r *CaptureRepo) GetCaptures(limit int) (captures []*face_model.Capture, err error) {
	var rows *sqlx.Rows

	query := `SELECT
				id,
				captured_at,
				provider,
				people_count,
				average_age,
				male_percentage,
				female_percentage,
				primary_emotion,
				primary_emotion_percentage,
				engagement_score,
				attention_time,
				faces,
				raw_response
			FROM capture
			ORDER BY captured_at DESC, id DESC`

	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err = r.db.Queryx(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		capture, err := scanCapture(rows.Scan)
		if err != nil {
			return nil, err
		}
		captures = append(captures, capture)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return captures, err
}

// GetCaptureById retrieves a single capture by its ID from the database.
func (r *CaptureRepo) GetCaptureById(id int) (capture *face_model.Capture, err error) {

	query := `SELECT
				id,
				captured_at,
				provider,
				people_count,
				average_age,
				male_percentage,
				female_percentage,
				primary_emotion,
				primary_emotion_percentage,
				engagement_score,
				attention_time,
				faces,
				raw_response
			FROM capture
			WHERE id=$1`

	capture, err = scanCapture(r.db.QueryRowx(query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("capture %d: %w", id, tools.ErrNotFound)
		}
		return nil, err
	}

	return capture, err
}

// UpdateCaptureStats overwrites the derived aggregate columns of one capture.
// The stored faces and raw payload are left untouched.
func (r *CaptureRepo) UpdateCaptureStats(capture *face_model.Capture) (err error) {
	var result sql.Result
	var rowsAffected int64

	query := `UPDATE capture
			SET average_age=$1,
				male_percentage=$2,
				female_percentage=$3,
				primary_emotion=$4,
				primary_emotion_percentage=$5,
				engagement_score=$6,
				attention_time=$7
			WHERE id=$8`

	result, err = r.db.Exec(query,
		capture.AverageAge,
		capture.MalePercentage,
		capture.FemalePercentage,
		(*string)(capture.PrimaryEmotion),
		capture.PrimaryEmotionPercentage,
		capture.EngagementScore,
		capture.AttentionTime,
		capture.Id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("capture %d: %w", capture.Id, tools.ErrNotFound)
	}

	return err
}

// DeleteCapture deletes a capture by its ID from the database.
func (r *CaptureRepo) DeleteCapture(id int) (err error) {
	var result sql.Result
	var rowsDeleted int64

	query := `DELETE FROM capture WHERE id=($1)`

	result, err = r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rowsDeleted, err = result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsDeleted == 0 {
		return fmt.Errorf("capture %d: %w", id, tools.ErrNotFound)
	}

	return err
}

// scanCapture reads one row in the shared column order and unpacks the JSONB
// columns.
func scanCapture(scan func(dest ...interface{}) error) (*face_model.Capture, error) {
	capture := &face_model.Capture{}
	var facesJSON, rawJSON []byte

	if err := scan(
		&capture.Id,
		&capture.Timestamp,
		&capture.Provider,
		&capture.PeopleCount,
		&capture.AverageAge,
		&capture.MalePercentage,
		&capture.FemalePercentage,
		&capture.PrimaryEmotion,
		&capture.PrimaryEmotionPercentage,
		&capture.EngagementScore,
		&capture.AttentionTime,
		&facesJSON,
		&rawJSON,
	); err != nil {
		return nil, err
	}

	if len(facesJSON) > 0 {
		if err := json.Unmarshal(facesJSON, &capture.Faces); err != nil {
			return nil, err
		}
	}
	if len(rawJSON) > 0 {
		capture.RawProviderResponse = json.RawMessage(rawJSON)
	}

	return capture, nil
}
