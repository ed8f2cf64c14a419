// Package service provides the service layer of the crowd analyzer: frame
// analysis with capture history, provider usage quotas, and runtime
// settings.
package service

import (
	"context"
	"log"
	"os"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/clients/facepp_client"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/clients/rekognition_client"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/database"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/settings_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/usage_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service/analysis_service"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service/settings_service"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service/usage_service"
	"github.com/vcentea/crowd-analyze-with-ai/tools"
)

const (
	// pgDbEnvName is the env variable key for the PostgreSQL database name.
	pgDbEnvName = "CROWD_ANALYZE__PG_NAME"

	// pgDbUserName is the env variable key for the PostgreSQL database username.
	pgDbUserName = "CROWD_ANALYZE__PG_USER"

	// pgPassEnvName is the env variable key for the PostgreSQL database password.
	pgPassEnvName = "CROWD_ANALYZE__PG_PASS"
)

// Service embeds the three service interfaces and provides every operation
// the transport layer needs.
type Service struct {
	Analysis
	Usage
	Settings
}

// NewServiceWithRepo creates a fully wired Service: database connection and
// schema, repositories, both provider adapters, the quota gate, and the
// analysis coordinator on top of them.
func NewServiceWithRepo() (srvs *Service) {
	tools.CheckEnvs(pgDbEnvName, pgDbUserName, pgPassEnvName)

	db, err := database.GetDatabase(os.Getenv(pgDbEnvName), os.Getenv(pgDbUserName), os.Getenv(pgPassEnvName))
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	if err = database.EnsureSchema(db); err != nil {
		log.Fatalf("Error migrating database schema: %v", err)
	}

	repo := repo.NewRepo(db)

	rekClient, err := rekognition_client.New(context.Background())
	if err != nil {
		log.Fatalf("Error initializing rekognition client: %v", err)
	}

	adapters := map[provider.Name]provider.Adapter{
		provider.AWS:    provider.NewRekognitionAdapter(rekClient),
		provider.FacePP: provider.NewFacePPAdapter(facepp_client.New()),
	}

	usage := usage_service.New(repo)

	return &Service{
		Analysis: analysis_service.New(repo, usage, adapters),
		Usage:    usage,
		Settings: settings_service.New(repo),
	}
}

// Analysis defines the interface for frame analysis and capture history.
type Analysis interface {
	Analyze(ctx context.Context, image []byte, cfg *settings_model.Settings) (capture *face_model.Capture, err error)
	GetCaptures(limit int) (captures []*face_model.Capture, err error)
	GetCaptureById(id int) (capture *face_model.Capture, err error)
	DeleteCapture(id int) (err error)
	ExportCaptures() (rows []face_model.CaptureExport, err error)
	RecomputeCaptures() (recomputed int, err error)
}

// Usage defines the interface for the provider quota gate.
type Usage interface {
	TryConsume(name provider.Name) (usage_model.Outcome, error)
	CurrentUsage() ([]usage_model.UsageRecord, error)
}

// Settings defines the interface for the runtime settings.
type Settings interface {
	Get() (cfg *settings_model.Settings, err error)
	Update(cfg *settings_model.Settings) (err error)
}
