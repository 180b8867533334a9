package gate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notexe/remind/internal/license"
)

// Options configures the fixed-window rate limit.
type Options struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Gate runs the license, rate limit and quota checks that guard every
// billed AI call. Callers run them in this order: Authenticate,
// CheckRateLimit, CheckAIQuota, IncrementRateLimit, the AI call, LogUsage.
type Gate struct {
	store Store
	opts  Options
	now   func() time.Time
}

func New(store Store, opts Options) *Gate {
	return &Gate{store: store, opts: opts, now: time.Now}
}

// SetClock replaces the time source.
func (g *Gate) SetClock(now func() time.Time) {
	g.now = now
}

// Authenticate returns the active, unexpired user owning token.
func (g *Gate) Authenticate(ctx context.Context, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &AuthError{Reason: "invalid license token"}
	}

	user, err := g.store.UserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if user == nil {
		return nil, &AuthError{Reason: "invalid license token"}
	}
	if !user.Active {
		return nil, &AuthError{Reason: "license is inactive"}
	}
	if user.ExpiresAt != nil && g.now().UTC().After(user.ExpiresAt.UTC()) {
		return nil, &AuthError{Reason: "license has expired"}
	}

	return user, nil
}

// CheckRateLimit starts a new window when none exists or the current one
// has passed its reset time, then fails when the window is full. The
// returned remaining count already accounts for the current request. The
// counter itself is only advanced by IncrementRateLimit.
func (g *Gate) CheckRateLimit(ctx context.Context, userID int64) (int, error) {
	now := g.now().UTC()

	window, err := g.store.RateLimit(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load rate limit: %w", err)
	}

	if window == nil || now.After(window.ResetAt) {
		resetAt := now.Add(g.opts.RateLimitWindow)
		if err := g.store.ResetRateLimit(ctx, userID, resetAt); err != nil {
			return 0, fmt.Errorf("failed to reset rate limit: %w", err)
		}
		window = &RateLimitWindow{UserID: userID, RequestCount: 0, ResetAt: resetAt}
	}

	if window.RequestCount >= g.opts.RateLimitRequests {
		return 0, &QuotaExceededError{
			Kind:   QuotaRate,
			Limit:  g.opts.RateLimitRequests,
			Used:   window.RequestCount,
			Window: g.opts.RateLimitWindow,
		}
	}

	return g.opts.RateLimitRequests - window.RequestCount - 1, nil
}

// IncrementRateLimit counts one request against the current window.
func (g *Gate) IncrementRateLimit(ctx context.Context, userID int64) error {
	if err := g.store.IncrementRateLimit(ctx, userID); err != nil {
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	return nil
}

// CheckAIQuota fails once the user's plan allowance for the current UTC
// calendar month is used up.
func (g *Gate) CheckAIQuota(ctx context.Context, user *User) error {
	used, err := g.store.CountUsage(ctx, user.ID, FeatureAISuggestion, MonthStart(g.now()))
	if err != nil {
		return fmt.Errorf("failed to count usage: %w", err)
	}

	quota := user.Plan.MonthlyQuota()
	if used >= quota {
		return &QuotaExceededError{Kind: QuotaMonthly, Limit: quota, Used: used}
	}
	return nil
}

// LogUsage appends one billed AI suggestion to the usage log.
func (g *Gate) LogUsage(ctx context.Context, userID int64, inputTokens, outputTokens, costCents int) (*UsageEntry, error) {
	entry := &UsageEntry{
		RequestID:    uuid.NewString(),
		UserID:       userID,
		Feature:      FeatureAISuggestion,
		Timestamp:    g.now().UTC(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostCents:    costCents,
	}
	if err := g.store.InsertUsage(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log usage: %w", err)
	}
	return entry, nil
}

// UsageStats summarizes quota, spend and rate limit state for user.
func (g *Gate) UsageStats(ctx context.Context, user *User) (*Stats, error) {
	now := g.now().UTC()
	monthStart := MonthStart(now)

	used, err := g.store.CountUsage(ctx, user.ID, FeatureAISuggestion, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count usage: %w", err)
	}
	cost, err := g.store.SumCost(ctx, user.ID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cost: %w", err)
	}
	window, err := g.store.RateLimit(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit: %w", err)
	}

	total := user.Plan.MonthlyQuota()
	stats := &Stats{
		UserID:             user.ID,
		PlanTier:           user.Plan,
		AIQuotaUsed:        used,
		AIQuotaTotal:       total,
		AIQuotaRemaining:   max(0, total-used),
		ThisMonthCostCents: cost,
		RateLimitRemaining: g.opts.RateLimitRequests,
		RateLimitResetAt:   now.Add(g.opts.RateLimitWindow).Format(time.RFC3339),
	}

	// An expired window is reported the way the next check will see it
	if window != nil && !now.After(window.ResetAt) {
		stats.RateLimitRemaining = max(0, g.opts.RateLimitRequests-window.RequestCount)
		stats.RateLimitResetAt = window.ResetAt.UTC().Format(time.RFC3339)
	}

	return stats, nil
}

// CreateUser issues a new license token for email on plan.
func (g *Gate) CreateUser(ctx context.Context, email string, plan Plan, expiresAt *time.Time) (*User, error) {
	if !plan.Valid() {
		return nil, fmt.Errorf("unknown plan %q", plan)
	}

	token, err := license.NewToken(string(plan))
	if err != nil {
		return nil, err
	}

	user := &User{
		Token:     token,
		Email:     email,
		Plan:      plan,
		Active:    true,
		CreatedAt: g.now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := g.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[gate] Issued %s license for %s (user %d)", plan, email, user.ID)
	return user, nil
}

// PruneExpiredWindows deletes rate limit windows that have already reset.
func (g *Gate) PruneExpiredWindows(ctx context.Context) (int64, error) {
	n, err := g.store.PruneRateLimits(ctx, g.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune rate limits: %w", err)
	}
	return n, nil
}

// MonthStart returns the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
