package gate

import "time"

// FeatureAISuggestion tags usage rows that count against the monthly quota.
const FeatureAISuggestion = "ai_suggestion"

type User struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	Email     string     `json:"email"`
	Plan      Plan       `json:"plan_tier"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RateLimitWindow is the fixed-window counter for one user.
type RateLimitWindow struct {
	UserID       int64
	RequestCount int
	ResetAt      time.Time
}

// UsageEntry is one billed call. Entries are never updated.
type UsageEntry struct {
	ID           int64
	RequestID    string
	UserID       int64
	Feature      string
	Timestamp    time.Time
	InputTokens  int
	OutputTokens int
	CostCents    int
}

type Stats struct {
	UserID             int64  `json:"user_id"`
	PlanTier           Plan   `json:"plan_tier"`
	AIQuotaUsed        int    `json:"ai_quota_used"`
	AIQuotaTotal       int    `json:"ai_quota_total"`
	AIQuotaRemaining   int    `json:"ai_quota_remaining"`
	ThisMonthCostCents int    `json:"this_month_cost_cents"`
	RateLimitRemaining int    `json:"rate_limit_remaining"`
	RateLimitResetAt   string `json:"rate_limit_reset_at"`
}
