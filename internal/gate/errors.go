package gate

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthenticated matches every authentication failure.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrQuotaExceeded matches both rate limit and monthly quota failures.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// AuthError explains why a token was rejected.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

func (e *AuthError) Is(target error) bool { return target == ErrUnauthenticated }

type QuotaKind string

const (
	QuotaRate    QuotaKind = "rate"
	QuotaMonthly QuotaKind = "monthly"
)

// QuotaExceededError names the limit that was hit.
type QuotaExceededError struct {
	Kind   QuotaKind
	Limit  int
	Used   int
	Window time.Duration
}

func (e *QuotaExceededError) Error() string {
	if e.Kind == QuotaRate {
		return fmt.Sprintf("rate limit exceeded: maximum %d requests per %d seconds", e.Limit, int(e.Window.Seconds()))
	}
	return fmt.Sprintf("monthly AI quota exhausted: used %d/%d", e.Used, e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }
