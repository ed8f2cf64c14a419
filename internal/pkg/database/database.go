package database

import (
	"fmt"
	"os"
	"time"

	"github.com/vcentea/crowd-analyze-with-ai/tools"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	pgHostEnvName = "CROWD_ANALYZE__PG_HOST"
	pgPortEnvName = "CROWD_ANALYZE__PG_PORT"
)

func GetDatabase(dbName, user, password string) (db *sqlx.DB, err error) {

	tools.CheckEnvs(pgHostEnvName, pgPortEnvName)

	connStr := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		os.Getenv(pgHostEnvName),
		os.Getenv(pgPortEnvName),
		dbName,
		user,
		password,
	)

	db, err = sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// EnsureSchema creates the application tables when they do not exist yet.
// Statements are idempotent so a restart against a provisioned database is a
// no-op.
func EnsureSchema(db *sqlx.DB) (err error) {

	schema := `
	CREATE TABLE IF NOT EXISTS capture (
		id SERIAL PRIMARY KEY,
		captured_at TIMESTAMPTZ NOT NULL,
		provider TEXT NOT NULL,
		people_count INTEGER NOT NULL,
		average_age DOUBLE PRECISION,
		male_percentage INTEGER,
		female_percentage INTEGER,
		primary_emotion TEXT,
		primary_emotion_percentage INTEGER,
		engagement_score INTEGER,
		attention_time DOUBLE PRECISION,
		faces JSONB NOT NULL DEFAULT '[]',
		raw_response JSONB
	);

	CREATE INDEX IF NOT EXISTS capture_captured_at_idx ON capture (captured_at DESC);

	CREATE TABLE IF NOT EXISTS usage_record (
		provider TEXT PRIMARY KEY,
		window_start TIMESTAMPTZ NOT NULL,
		window_reset_at TIMESTAMPTZ NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		reached_limit BOOLEAN NOT NULL DEFAULT FALSE,
		minute_window_start TIMESTAMPTZ,
		minute_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY,
		active_provider TEXT NOT NULL,
		confidence_threshold DOUBLE PRECISION NOT NULL,
		capture_interval_seconds INTEGER NOT NULL,
		show_age BOOLEAN NOT NULL,
		show_gender BOOLEAN NOT NULL,
		show_emotions BOOLEAN NOT NULL,
		show_engagement BOOLEAN NOT NULL
	);`

	if _, err = db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}
