package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/notexe/remind/internal/reminder"
)

const defaultNotifyTimeout = 10 * time.Second

// Source lists active reminders due at or before now, due-at ascending.
type Source interface {
	DueNow(now time.Time) ([]reminder.Reminder, error)
}

// PremiumGuard gates nudges behind a license.
type PremiumGuard interface {
	RequirePremium() error
}

type Options struct {
	Interval      time.Duration
	Policy        Policy
	NotifyTimeout time.Duration
	Sound         bool

	// When set, nudges are allowed only while RequirePremium succeeds
	// and Policy.AllowNudges is ignored.
	Premium PremiumGuard
}

// Scheduler polls the store and drives the nudge state machine.
type Scheduler struct {
	source   Source
	notifier Notifier
	plugins  *Registry
	state    *State
	opts     Options
	now      func() time.Time
}

// New creates a Scheduler. plugins may be nil; every plugin call is
// bounded by opts.NotifyTimeout.
func New(source Source, notifier Notifier, plugins *Registry, opts Options) *Scheduler {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.Policy.FirstNotify == "" {
		opts.Policy.FirstNotify = FirstNotifyImmediate
	}
	intervals := append([]time.Duration(nil), opts.Policy.Intervals...)
	sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })
	opts.Policy.Intervals = intervals
	plugins.SetTimeout(opts.NotifyTimeout)

	return &Scheduler{
		source:   source,
		notifier: notifier,
		plugins:  plugins,
		state:    NewState(),
		opts:     opts,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Scheduler) State() *State {
	return s.state
}

// Run blocks and runs Pass on interval + immediately on start.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.opts.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.opts.Interval)
	}

	log.Printf("[scheduler] Started. Interval: %s, nudges: %v", s.opts.Interval, s.opts.Policy.Intervals)

	s.Pass(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[scheduler] Shutting down...")
			return nil
		case <-ticker.C:
			s.Pass(ctx)
		}
	}
}

// Pass runs one check: query due reminders, forget ids that are no longer
// due, evaluate and dispatch. Errors are logged, never returned.
func (s *Scheduler) Pass(ctx context.Context) []Decision {
	now := s.now()

	due, err := s.source.DueNow(now)
	if err != nil {
		log.Printf("[scheduler] Error: failed to load due reminders: %v", err)
		return nil
	}

	for _, id := range s.state.Stale(due) {
		s.state.RecordDone(id)
		s.plugins.NotifyDone(ctx, id)
	}

	decisions := s.state.Evaluate(due, now, s.policy())

	for _, d := range decisions {
		switch d.Action {
		case ActionNotifyDue:
			log.Printf("[scheduler] Reminder %d is due", d.Reminder.ID)
			s.deliver(ctx, DueNotification(d.Reminder.Text, s.opts.Sound))
			s.plugins.NotifyDue(ctx, d.Reminder)
			s.state.RecordNudge(d.Reminder.ID, now)
		case ActionNotifyNudge:
			log.Printf("[scheduler] Nudging reminder %d (%s tier)", d.Reminder.ID, d.Tier)
			s.deliver(ctx, NudgeNotification(d.Reminder.Text, s.opts.Sound))
			s.state.RecordNudge(d.Reminder.ID, now)
		}
	}

	s.state.markChecked(now)
	return decisions
}

func (s *Scheduler) policy() Policy {
	p := s.opts.Policy
	if s.opts.Premium != nil {
		p.AllowNudges = s.opts.Premium.RequirePremium() == nil
	}
	return p
}

func (s *Scheduler) deliver(ctx context.Context, n Notification) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[scheduler] Error: notifier panicked: %v", rec)
		}
	}()

	if !s.notifier.Send(ctx, n) {
		log.Printf("[scheduler] Error: notification %q was not delivered", n.Title)
	}
}
