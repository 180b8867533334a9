package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/notexe/remind/internal/reminder"
)

// Action is what a pass decided to do with one due reminder.
type Action int

const (
	ActionNone Action = iota
	ActionNotifyDue
	ActionNotifyNudge
)

func (a Action) String() string {
	switch a {
	case ActionNotifyDue:
		return "notify_due"
	case ActionNotifyNudge:
		return "notify_nudge"
	default:
		return "none"
	}
}

// FirstNotifyPolicy decides when an unseen due reminder gets its first notification.
type FirstNotifyPolicy string

const (
	// FirstNotifyImmediate fires as soon as due_at <= now.
	FirstNotifyImmediate FirstNotifyPolicy = "immediate"
	// FirstNotifyFirstInterval waits until more than Intervals[0] has
	// passed since due_at. With no intervals it never fires.
	FirstNotifyFirstInterval FirstNotifyPolicy = "first_interval"
)

// Policy holds the escalation settings used by Evaluate.
type Policy struct {
	Intervals   []time.Duration // ascending
	FirstNotify FirstNotifyPolicy
	AllowNudges bool
}

// Decision pairs a reminder with the action chosen for it. Tier is the
// nudge interval that fired, zero for anything but ActionNotifyNudge.
type Decision struct {
	Reminder reminder.Reminder
	Action   Action
	Tier     time.Duration
}

// State is the in-memory nudge tracker. An id present in the map has been
// notified at least once and has not been marked done since. Nothing is
// persisted; a restart starts from an empty map.
type State struct {
	mu        sync.Mutex
	lastNudge map[int64]time.Time
	lastCheck time.Time
}

func NewState() *State {
	return &State{lastNudge: make(map[int64]time.Time)}
}

// overridden in tests
var beforeEvaluate = func(reminder.Reminder) {}

// Evaluate returns one decision per input reminder without changing state.
// At most one action is chosen per reminder.
func (s *State) Evaluate(due []reminder.Reminder, now time.Time, p Policy) []Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	decisions := make([]Decision, 0, len(due))
	for _, r := range due {
		decisions = append(decisions, s.evaluateOne(r, now, p))
	}
	return decisions
}

func (s *State) evaluateOne(r reminder.Reminder, now time.Time, p Policy) (d Decision) {
	d = Decision{Reminder: r, Action: ActionNone}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[scheduler] Error: evaluating reminder %d: %v", r.ID, rec)
			d = Decision{Reminder: r, Action: ActionNone}
		}
	}()

	beforeEvaluate(r)

	if r.DueAt.After(now) || !r.Active() {
		return d
	}
	sinceDue := now.Sub(r.DueAt)

	last, seen := s.lastNudge[r.ID]
	if !seen {
		if p.FirstNotify == FirstNotifyFirstInterval {
			if len(p.Intervals) == 0 || sinceDue <= p.Intervals[0] {
				return d
			}
		}
		d.Action = ActionNotifyDue
		return d
	}

	if !p.AllowNudges {
		return d
	}

	sinceNudge := now.Sub(last)
	for _, k := range p.Intervals {
		if sinceDue > k && sinceNudge > k {
			d.Action = ActionNotifyNudge
			d.Tier = k
			return d
		}
	}
	return d
}

// RecordNudge stores at as the last notification time for id.
func (s *State) RecordNudge(id int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNudge[id] = at
}

// RecordDone forgets id. Calling it for an unknown id is a no-op.
func (s *State) RecordDone(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastNudge, id)
}

func (s *State) Seen(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lastNudge[id]
	return ok
}

func (s *State) LastNudge(id int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastNudge[id]
	return t, ok
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastNudge)
}

// Stale returns tracked ids that are not in the due set.
func (s *State) Stale(due []reminder.Reminder) []int64 {
	present := make(map[int64]struct{}, len(due))
	for _, r := range due {
		present[r.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []int64
	for id := range s.lastNudge {
		if _, ok := present[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

func (s *State) markChecked(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCheck = at
}

// LastCheck returns the time of the last completed pass.
func (s *State) LastCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheck
}
