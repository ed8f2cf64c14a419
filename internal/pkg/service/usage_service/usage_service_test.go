package usage_service

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/usage_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/repo"
	"github.com/vcentea/crowd-analyze-with-ai/tools"
)

var baseTime = time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)

// fakeUsageStore is an in-memory stand-in for the usage repo. It stores
// copies, like a real database, so records held by the service never alias
// stored state.
type fakeUsageStore struct {
	records map[string]*usage_model.UsageRecord
	saves   int
	getErr  error
	saveErr error
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{records: map[string]*usage_model.UsageRecord{}}
}

func (f *fakeUsageStore) GetUsage(providerName string) (*usage_model.UsageRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[providerName]
	if !ok {
		return nil, fmt.Errorf("usage for provider %s: %w", providerName, tools.ErrNotFound)
	}
	return copyRecord(rec), nil
}

func (f *fakeUsageStore) SaveUsage(rec *usage_model.UsageRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.records[rec.Provider] = copyRecord(rec)
	return nil
}

func copyRecord(rec *usage_model.UsageRecord) *usage_model.UsageRecord {
	cp := *rec
	if rec.MinuteWindowStart != nil {
		t := *rec.MinuteWindowStart
		cp.MinuteWindowStart = &t
	}
	return &cp
}

// withProviderLimits swaps one provider's limits for the duration of a test.
func withProviderLimits(t *testing.T, name provider.Name, lim limits) {
	t.Helper()

	old := providerLimits[name]
	providerLimits[name] = lim
	t.Cleanup(func() { providerLimits[name] = old })
}

func Test_UsageService_TryConsume_MonthlyLimit(t *testing.T) {
	withProviderLimits(t, provider.AWS, limits{monthly: 2})

	store := newFakeUsageStore()
	service := New(&repo.Repo{Usage: store})
	service.now = func() time.Time { return baseTime }

	// Define the call sequence against the shrunk limit
	steps := []struct {
		name         string
		want         usage_model.Outcome
		wantCount    int
		wantReached  bool
		wantNewSaves int
	}{
		{ // first use creates the default row, then counts the call
			name:         "first call is counted",
			want:         usage_model.OutcomeAccepted,
			wantCount:    1,
			wantNewSaves: 2,
		},
		{
			name:         "second call exhausts the window",
			want:         usage_model.OutcomeAccepted,
			wantCount:    2,
			wantNewSaves: 1,
		},
		{ // the limit is hit: the exhausted flag is set and persisted
			name:         "third call trips the quota",
			want:         usage_model.OutcomeQuotaExceeded,
			wantCount:    2,
			wantReached:  true,
			wantNewSaves: 1,
		},
		{ // once flagged, rejections are answered from the flag without writing
			name:         "fourth call is rejected without a write",
			want:         usage_model.OutcomeQuotaExceeded,
			wantCount:    2,
			wantReached:  true,
			wantNewSaves: 0,
		},
	}

	// Run the sequence in order
	for _, step := range steps {
		savesBefore := store.saves

		got, err := service.TryConsume(provider.AWS)
		if err != nil {
			t.Fatalf("%s: usageService.TryConsume() error = %v, wantErr false", step.name, err)
		}
		if got != step.want {
			t.Errorf("%s: usageService.TryConsume() = %v, want %v", step.name, got, step.want)
		}

		rec := store.records["aws"]
		if rec.Count != step.wantCount {
			t.Errorf("%s: stored count = %d, want %d", step.name, rec.Count, step.wantCount)
		}
		if rec.ReachedLimit != step.wantReached {
			t.Errorf("%s: stored reached limit = %v, want %v", step.name, rec.ReachedLimit, step.wantReached)
		}
		if newSaves := store.saves - savesBefore; newSaves != step.wantNewSaves {
			t.Errorf("%s: saves = %d, want %d", step.name, newSaves, step.wantNewSaves)
		}
	}
}

func Test_UsageService_TryConsume_MinuteBucket(t *testing.T) {
	withProviderLimits(t, provider.FacePP, limits{monthly: 100, perMinute: 2})

	store := newFakeUsageStore()
	service := New(&repo.Repo{Usage: store})

	clock := baseTime
	service.now = func() time.Time { return clock }

	// Define the call sequence across the rolling minute
	steps := []struct {
		name            string
		advance         time.Duration
		want            usage_model.Outcome
		wantCount       int
		wantMinuteCount int
	}{
		{
			name:            "first call opens the minute bucket",
			want:            usage_model.OutcomeAccepted,
			wantCount:       1,
			wantMinuteCount: 1,
		},
		{
			name:            "second call fills the bucket",
			advance:         10 * time.Second,
			want:            usage_model.OutcomeAccepted,
			wantCount:       2,
			wantMinuteCount: 2,
		},
		{ // rejected without touching the stored counters
			name:            "third call in the same minute is rejected",
			advance:         10 * time.Second,
			want:            usage_model.OutcomeRateLimited,
			wantCount:       2,
			wantMinuteCount: 2,
		},
		{ // 59 seconds after the bucket opened, still the same minute
			name:            "still rejected just before the minute elapses",
			advance:         39 * time.Second,
			want:            usage_model.OutcomeRateLimited,
			wantCount:       2,
			wantMinuteCount: 2,
		},
		{ // exactly one minute after the bucket opened it restarts
			name:            "a fresh minute restarts the bucket",
			advance:         time.Second,
			want:            usage_model.OutcomeAccepted,
			wantCount:       3,
			wantMinuteCount: 1,
		},
	}

	// Run the sequence in order
	for _, step := range steps {
		clock = clock.Add(step.advance)
		savesBefore := store.saves

		got, err := service.TryConsume(provider.FacePP)
		if err != nil {
			t.Fatalf("%s: usageService.TryConsume() error = %v, wantErr false", step.name, err)
		}
		if got != step.want {
			t.Errorf("%s: usageService.TryConsume() = %v, want %v", step.name, got, step.want)
		}

		rec := store.records["facepp"]
		if rec.Count != step.wantCount {
			t.Errorf("%s: stored count = %d, want %d", step.name, rec.Count, step.wantCount)
		}
		if rec.MinuteCount != step.wantMinuteCount {
			t.Errorf("%s: stored minute count = %d, want %d", step.name, rec.MinuteCount, step.wantMinuteCount)
		}
		if got == usage_model.OutcomeRateLimited && store.saves != savesBefore {
			t.Errorf("%s: rejection persisted %d saves, want 0", step.name, store.saves-savesBefore)
		}
	}

	// The restarted bucket must anchor at the restart instant
	rec := store.records["facepp"]
	if rec.MinuteWindowStart == nil || !rec.MinuteWindowStart.Equal(clock) {
		t.Errorf("minute window start = %v, want %v", rec.MinuteWindowStart, clock)
	}
}

func Test_UsageService_TryConsume_MonthRollover(t *testing.T) {
	store := newFakeUsageStore()
	store.records["aws"] = &usage_model.UsageRecord{
		Provider:      "aws",
		WindowStart:   time.Date(2026, time.July, 14, 9, 0, 0, 0, time.UTC),
		WindowResetAt: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		Count:         5000,
		ReachedLimit:  true,
	}

	service := New(&repo.Repo{Usage: store})
	service.now = func() time.Time { return baseTime }

	got, err := service.TryConsume(provider.AWS)
	if err != nil {
		t.Fatalf("usageService.TryConsume() error = %v, wantErr false", err)
	}
	if got != usage_model.OutcomeAccepted {
		t.Errorf("usageService.TryConsume() = %v, want %v", got, usage_model.OutcomeAccepted)
	}

	want := &usage_model.UsageRecord{
		Provider:      "aws",
		WindowStart:   baseTime,
		WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		Count:         1,
		ReachedLimit:  false,
	}
	if !reflect.DeepEqual(store.records["aws"], want) {
		t.Errorf("stored record = %+v, want %+v", store.records["aws"], want)
	}
}

func Test_UsageService_TryConsume_StoreFailures(t *testing.T) {
	t.Run("load failure", func(t *testing.T) {
		store := newFakeUsageStore()
		store.getErr = errors.New("connection refused")

		service := New(&repo.Repo{Usage: store})
		service.now = func() time.Time { return baseTime }

		if _, err := service.TryConsume(provider.AWS); err == nil {
			t.Errorf("usageService.TryConsume() error = nil, wantErr true")
		}
	})

	t.Run("save failure", func(t *testing.T) {
		store := newFakeUsageStore()
		store.records["aws"] = &usage_model.UsageRecord{
			Provider:      "aws",
			WindowStart:   baseTime,
			WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		}
		store.saveErr = errors.New("connection refused")

		service := New(&repo.Repo{Usage: store})
		service.now = func() time.Time { return baseTime }

		if _, err := service.TryConsume(provider.AWS); err == nil {
			t.Errorf("usageService.TryConsume() error = nil, wantErr true")
		}
	})
}

func Test_UsageService_CurrentUsage(t *testing.T) {
	t.Run("creates default records on first read", func(t *testing.T) {
		store := newFakeUsageStore()

		service := New(&repo.Repo{Usage: store})
		service.now = func() time.Time { return baseTime }

		got, err := service.CurrentUsage()
		if err != nil {
			t.Fatalf("usageService.CurrentUsage() error = %v, wantErr false", err)
		}

		want := []usage_model.UsageRecord{
			{Provider: "aws", WindowStart: baseTime, WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)},
			{Provider: "facepp", WindowStart: baseTime, WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("usageService.CurrentUsage() = %+v, want %+v", got, want)
		}
	})

	t.Run("rolls a stale window over on read", func(t *testing.T) {
		store := newFakeUsageStore()
		store.records["aws"] = &usage_model.UsageRecord{
			Provider:      "aws",
			WindowStart:   time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
			WindowResetAt: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
			Count:         777,
			ReachedLimit:  true,
		}
		store.records["facepp"] = &usage_model.UsageRecord{
			Provider:      "facepp",
			WindowStart:   baseTime,
			WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
			Count:         12,
		}

		service := New(&repo.Repo{Usage: store})
		service.now = func() time.Time { return baseTime }

		got, err := service.CurrentUsage()
		if err != nil {
			t.Fatalf("usageService.CurrentUsage() error = %v, wantErr false", err)
		}

		want := []usage_model.UsageRecord{
			{Provider: "aws", WindowStart: baseTime, WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)},
			{Provider: "facepp", WindowStart: baseTime, WindowResetAt: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), Count: 12},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("usageService.CurrentUsage() = %+v, want %+v", got, want)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		store := newFakeUsageStore()
		store.getErr = errors.New("connection refused")

		service := New(&repo.Repo{Usage: store})
		service.now = func() time.Time { return baseTime }

		if _, err := service.CurrentUsage(); err == nil {
			t.Errorf("usageService.CurrentUsage() error = nil, wantErr true")
		}
	})
}

func Test_FirstOfNextMonth(t *testing.T) {

	// Define table-driven tests
	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{
			name: "mid month",
			t:    time.Date(2026, time.August, 23, 13, 45, 12, 0, time.UTC),
			want: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		},
		{ // month 13 normalizes into January of the next year
			name: "december wraps the year",
			t:    time.Date(2026, time.December, 15, 8, 0, 0, 0, time.UTC),
			want: time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first instant of a month still moves forward",
			t:    time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		},
		{ // a local September 1st that is still August in UTC
			name: "zoned time counts in utc",
			t:    time.Date(2026, time.September, 1, 1, 30, 0, 0, time.FixedZone("UTC+3", 3*60*60)),
			want: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	// Run all test cases
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstOfNextMonth(tt.t); !got.Equal(tt.want) {
				t.Errorf("firstOfNextMonth() = %v, want %v", got, tt.want)
			}
		})
	}
}
