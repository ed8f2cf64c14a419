// Package analysis_service coordinates one frame analysis: quota gate, the
// active provider adapter, aggregation and engagement scoring, and the
// capture history around them.
package analysis_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/analysis"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/settings_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/usage_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo"
)

// Quota rejections surfaced to callers. The gate itself reports outcomes,
// not errors; these exist so transport code can map rejections to responses.
var (
	ErrQuotaExceeded = errors.New("monthly usage quota exhausted")
	ErrRateLimited   = errors.New("per-minute request limit reached")
)

// defaultHistoryLimit bounds capture listings when the caller does not ask
// for a specific amount.
const defaultHistoryLimit = 50

// Gate decides whether a provider call may proceed.
type Gate interface {
	TryConsume(name provider.Name) (usage_model.Outcome, error)
}

// AnalysisService runs the analysis pipeline and owns the capture history.
type AnalysisService struct {
	repo     *repo.Repo
	gate     Gate
	adapters map[provider.Name]provider.Adapter
}

// New creates a new AnalysisService instance with the given gate and
// adapters.
func New(repo *repo.Repo, gate Gate, adapters map[provider.Name]provider.Adapter) *AnalysisService {
	return &AnalysisService{
		repo:     repo,
		gate:     gate,
		adapters: adapters,
	}
}

// Analyze runs the full pipeline for one frame. The quota gate is consulted
// strictly before the provider call, so a gated-off request never reaches
// the vendor. A failure to store the capture is logged but does not fail the
// analysis: the response is the product, the history row is the audit trail.
func (s *AnalysisService) Analyze(ctx context.Context, image []byte, cfg *settings_model.Settings) (capture *face_model.Capture, err error) {
	name, err := provider.ParseName(cfg.ActiveProvider)
	if err != nil {
		return nil, err
	}

	adapter, ok := s.adapters[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", name)
	}

	outcome, err := s.gate.TryConsume(name)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case usage_model.OutcomeQuotaExceeded:
		return nil, ErrQuotaExceeded
	case usage_model.OutcomeRateLimited:
		return nil, ErrRateLimited
	}

	detection, err := adapter.Detect(ctx, image, cfg.ConfidenceThreshold)
	if err != nil {
		return nil, err
	}

	capture = &face_model.Capture{
		Provider:      string(name),
		FrameAnalysis: buildFrameAnalysis(detection),
	}

	id, err := s.repo.CreateCapture(capture)
	if err != nil {
		log.Println("failed to save capture:", err)
		return capture, nil
	}
	capture.Id = id

	return capture, nil
}

// buildFrameAnalysis derives the frame-level values from the canonical
// faces. The result is complete at construction and never mutated afterward.
func buildFrameAnalysis(detection *provider.Detection) face_model.FrameAnalysis {
	frame := face_model.FrameAnalysis{
		Faces:               detection.Faces,
		PeopleCount:         len(detection.Faces),
		AggregateStats:      analysis.Summarize(detection.Faces),
		Timestamp:           time.Now().UTC(),
		RawProviderResponse: detection.Raw,
	}

	if eng := analysis.ScoreEngagement(detection.Faces); eng != nil {
		frame.EngagementScore = &eng.Score
		frame.AttentionTime = &eng.AttentionTime
	}

	return frame
}

// GetCaptures returns the newest captures first. A non-positive limit falls
// back to the default page size.
func (s *AnalysisService) GetCaptures(limit int) (captures []*face_model.Capture, err error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.GetCaptures(limit)
}

// GetCaptureById returns one stored capture.
func (s *AnalysisService) GetCaptureById(id int) (capture *face_model.Capture, err error) {
	return s.repo.GetCaptureById(id)
}

// DeleteCapture removes one stored capture.
func (s *AnalysisService) DeleteCapture(id int) (err error) {
	return s.repo.DeleteCapture(id)
}

// ExportCaptures returns the whole history as anonymized aggregate rows:
// no per-face entries and no raw provider payloads.
func (s *AnalysisService) ExportCaptures() (rows []face_model.CaptureExport, err error) {
	captures, err := s.repo.GetCaptures(0)
	if err != nil {
		return nil, err
	}

	rows = make([]face_model.CaptureExport, 0, len(captures))
	for _, capture := range captures {
		rows = append(rows, face_model.CaptureExport{
			Id:              capture.Id,
			Timestamp:       capture.Timestamp,
			Provider:        capture.Provider,
			PeopleCount:     capture.PeopleCount,
			AggregateStats:  capture.AggregateStats,
			EngagementScore: capture.EngagementScore,
			AttentionTime:   capture.AttentionTime,
		})
	}

	return rows, nil
}

// RecomputeCaptures re-derives the aggregate statistics and engagement
// values of every stored capture from its canonical faces, for when the
// scoring heuristics change after data was captured. Faces and raw payloads
// are left untouched. Returns the number of recomputed captures.
func (s *AnalysisService) RecomputeCaptures() (recomputed int, err error) {

	captures, err := s.repo.GetCaptures(0)
	if err != nil {
		return 0, err
	}

	g := new(errgroup.Group)
	g.SetLimit(10)

	var mu sync.Mutex
	var toSave []*face_model.Capture

	for _, capture := range captures {
		currCapture := capture
		g.Go(func() error {
			currCapture.AggregateStats = analysis.Summarize(currCapture.Faces)

			currCapture.EngagementScore = nil
			currCapture.AttentionTime = nil
			if eng := analysis.ScoreEngagement(currCapture.Faces); eng != nil {
				currCapture.EngagementScore = &eng.Score
				currCapture.AttentionTime = &eng.AttentionTime
			}

			mu.Lock()
			toSave = append(toSave, currCapture)
			mu.Unlock()

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return 0, err
	}

	for _, capture := range toSave {
		if err = s.repo.UpdateCaptureStats(capture); err != nil {
			return recomputed, err
		}
		recomputed++
	}

	return recomputed, nil
}
