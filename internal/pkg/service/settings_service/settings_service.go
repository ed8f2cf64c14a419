// Package settings_service manages the runtime settings with lazy defaults.
package settings_service

import (
	"errors"
	"fmt"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/settings_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo"
	"github.com/vcentea/crowd-analyze-with-ai/tools"
)

const (
	defaultConfidenceThreshold    = 80
	defaultCaptureIntervalSeconds = 10
)

// ErrInvalidSettings marks a rejected settings update. The wrap carries the
// specific violation.
var ErrInvalidSettings = errors.New("invalid settings")

// SettingsService reads and validates the persisted settings.
type SettingsService struct {
	repo *repo.Repo
}

// New creates a new SettingsService instance backed by the given repo.
func New(repo *repo.Repo) *SettingsService {
	return &SettingsService{
		repo: repo,
	}
}

// Get returns the stored settings, creating and persisting the defaults on
// first use.
func (s *SettingsService) Get() (cfg *settings_model.Settings, err error) {
	cfg, err = s.repo.GetSettings()
	if err != nil {
		if !errors.Is(err, tools.ErrNotFound) {
			return nil, err
		}

		cfg = defaultSettings()
		if err = s.repo.SaveSettings(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Update validates and persists new settings. Invalid settings are rejected
// without touching the stored row.
func (s *SettingsService) Update(cfg *settings_model.Settings) (err error) {
	if _, err = provider.ParseName(cfg.ActiveProvider); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 100 {
		return fmt.Errorf("%w: confidence threshold must be between 0 and 100", ErrInvalidSettings)
	}

	if cfg.CaptureIntervalSeconds <= 0 {
		return fmt.Errorf("%w: capture interval must be positive", ErrInvalidSettings)
	}

	return s.repo.SaveSettings(cfg)
}

func defaultSettings() *settings_model.Settings {
	return &settings_model.Settings{
		ActiveProvider:         string(provider.AWS),
		ConfidenceThreshold:    defaultConfidenceThreshold,
		CaptureIntervalSeconds: defaultCaptureIntervalSeconds,
		ShowAge:                true,
		ShowGender:             true,
		ShowEmotions:           true,
		ShowEngagement:         true,
	}
}
