// Package repo provides the storage layer: capture history rows, per-provider
// usage counters and the single settings row.
package repo

import (
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/settings_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/usage_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo/capture_repo"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo/settings_repo"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo/usage_repo"

	"github.com/jmoiron/sqlx"
)

// Repo embeds the storage interfaces so services can depend on the slices
// they need while sharing one wired instance.
type Repo struct {
	Capture
	Usage
	Settings
}

// NewRepo creates a Repo backed by the given database connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{
		Capture:  capture_repo.New(db),
		Usage:    usage_repo.New(db),
		Settings: settings_repo.New(db),
	}
}

// Capture defines the interface for the capture history.
type Capture interface {
	CreateCapture(capture *face_model.Capture) (id int, err error)
	GetCaptures(limit int) (captures []*face_model.Capture, err error)
	GetCaptureById(id int) (capture *face_model.Capture, err error)
	UpdateCaptureStats(capture *face_model.Capture) (err error)
	DeleteCapture(id int) (err error)
}

// Usage defines the interface for provider usage counters.
type Usage interface {
	GetUsage(providerName string) (rec *usage_model.UsageRecord, err error)
	SaveUsage(rec *usage_model.UsageRecord) (err error)
}

// Settings defines the interface for the persisted runtime settings.
type Settings interface {
	GetSettings() (cfg *settings_model.Settings, err error)
	SaveSettings(cfg *settings_model.Settings) (err error)
}
