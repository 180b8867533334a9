package backend

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/notexe/remind/internal/gate"
)

// StartMaintenance schedules periodic removal of rate limit windows that
// have already reset. Callers own the returned scheduler and must shut it
// down.
func StartMaintenance(g *gate.Gate, interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("maintenance interval must be positive")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { pruneWindows(context.Background(), g) }),
	)
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	s.Start()
	return s, nil
}

func pruneWindows(ctx context.Context, g *gate.Gate) {
	n, err := g.PruneExpiredWindows(ctx)
	if err != nil {
		log.Printf("[backend] Maintenance failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[backend] Pruned %d expired rate limit windows", n)
	}
}
