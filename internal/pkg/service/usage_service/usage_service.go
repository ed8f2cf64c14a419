// Package usage_service enforces the provider usage quotas: a monthly window
// for every provider plus a rolling minute bucket for Face++.
package usage_service

import (
	"errors"
	"sync"
	"time"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/usage_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo"
	"github.com/vcentea/crowd-analyze-with-ai/tools"
)

const (
	awsMonthlyLimit    = 5000
	faceppMonthlyLimit = 30000
	faceppMinuteLimit  = 30

	minuteWindow = 60 * time.Second
)

// limits holds one provider's quota configuration. A perMinute of 0 disables
// the per-minute bucket for that provider.
type limits struct {
	monthly   int
	perMinute int
}

var providerLimits = map[provider.Name]limits{
	provider.AWS:    {monthly: awsMonthlyLimit},
	provider.FacePP: {monthly: faceppMonthlyLimit, perMinute: faceppMinuteLimit},
}

// displayOrder fixes the order usage records are reported in.
var displayOrder = []provider.Name{provider.AWS, provider.FacePP}

// UsageService is the quota gate. The mutex serializes the whole
// load-evaluate-save cycle, so concurrent requests cannot lose counter
// updates between read and write.
type UsageService struct {
	repo *repo.Repo
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a new UsageService instance backed by the given repo.
func New(repo *repo.Repo) *UsageService {
	return &UsageService{
		repo: repo,
		now:  time.Now,
	}
}

// TryConsume runs the quota state machine for one attempted provider call.
// The evaluation order is: window rollover, exhausted flag, monthly limit,
// minute bucket, monthly increment. Reordering these steps changes the
// observable behavior under bursty load.
func (s *UsageService) TryConsume(name provider.Name) (usage_model.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	rec, err := s.loadRecord(name, now)
	if err != nil {
		return 0, err
	}

	lim := providerLimits[name]

	if rec.ReachedLimit {
		return usage_model.OutcomeQuotaExceeded, nil
	}

	if rec.Count >= lim.monthly {
		rec.ReachedLimit = true
		if err = s.repo.SaveUsage(rec); err != nil {
			return 0, err
		}
		return usage_model.OutcomeQuotaExceeded, nil
	}

	if lim.perMinute > 0 {
		switch {
		case rec.MinuteWindowStart == nil || now.Sub(*rec.MinuteWindowStart) >= minuteWindow:
			start := now
			rec.MinuteWindowStart = &start
			rec.MinuteCount = 1
		case rec.MinuteCount >= lim.perMinute:
			// Rejected within the same minute: nothing changed, nothing is
			// persisted.
			return usage_model.OutcomeRateLimited, nil
		default:
			rec.MinuteCount++
		}
	}

	rec.Count++
	if err = s.repo.SaveUsage(rec); err != nil {
		return 0, err
	}

	return usage_model.OutcomeAccepted, nil
}

// CurrentUsage returns every provider's record for display. Reading applies
// the month rollover too, so a stale record is never shown.
func (s *UsageService) CurrentUsage() ([]usage_model.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	records := make([]usage_model.UsageRecord, 0, len(displayOrder))
	for _, name := range displayOrder {
		rec, err := s.loadRecord(name, now)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, nil
}

// loadRecord fetches one provider's record, creating the default row on
// first use and applying the month rollover before any evaluation. Callers
// must hold the mutex.
func (s *UsageService) loadRecord(name provider.Name, now time.Time) (rec *usage_model.UsageRecord, err error) {
	rec, err = s.repo.GetUsage(string(name))
	if err != nil {
		if !errors.Is(err, tools.ErrNotFound) {
			return nil, err
		}

		rec = newRecord(string(name), now)
		if err = s.repo.SaveUsage(rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	if !now.Before(rec.WindowResetAt) {
		rec.WindowStart = now
		rec.WindowResetAt = firstOfNextMonth(now)
		rec.Count = 0
		rec.ReachedLimit = false
		if err = s.repo.SaveUsage(rec); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

func newRecord(providerName string, now time.Time) *usage_model.UsageRecord {
	return &usage_model.UsageRecord{
		Provider:      providerName,
		WindowStart:   now,
		WindowResetAt: firstOfNextMonth(now),
	}
}

// firstOfNextMonth returns midnight UTC on the first day of the month after
// t. time.Date normalizes month 13 into January of the next year.
func firstOfNextMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
