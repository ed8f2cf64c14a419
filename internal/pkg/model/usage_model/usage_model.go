// Package usage_model holds the provider usage accounting models.
package usage_model

import "time"

// Outcome is the quota gate's verdict for one attempted provider call.
type Outcome int

const (
	// OutcomeAccepted means the call was counted and may proceed.
	OutcomeAccepted Outcome = iota
	// OutcomeQuotaExceeded means the monthly quota is exhausted until the
	// window resets.
	OutcomeQuotaExceeded
	// OutcomeRateLimited means the per-minute bucket is full; the call may be
	// retried within the same month.
	OutcomeRateLimited
)

// String returns the outcome tag used in logs and responses.
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// UsageRecord tracks one provider's consumption in the current monthly
// window. The minute fields are only maintained for providers with a
// per-minute limit and keep their last values otherwise.
type UsageRecord struct {
	Provider          string     `db:"provider" json:"provider"`
	WindowStart       time.Time  `db:"window_start" json:"startDate"`
	WindowResetAt     time.Time  `db:"window_reset_at" json:"resetDate"`
	Count             int        `db:"count" json:"count"`
	ReachedLimit      bool       `db:"reached_limit" json:"reachedLimit"`
	MinuteWindowStart *time.Time `db:"minute_window_start" json:"minuteStartTime,omitempty"`
	MinuteCount       int        `db:"minute_count" json:"minuteCount"`
}
