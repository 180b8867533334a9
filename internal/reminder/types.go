package reminder

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Priority is the urgency class of a reminder.
type Priority string

// Priority levels for reminders.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// MaxTextLength is the longest reminder text accepted, in characters.
const MaxTextLength = 1000

var (
	ErrNotFound    = errors.New("reminder not found")
	ErrInvalidText = errors.New("reminder text must be between 1 and 1000 characters")
	ErrBadPriority = errors.New("invalid priority")
)

// Reminder represents a scheduled reminder item.
// DoneAt is nil while the reminder is active.
type Reminder struct {
	ID              int64      `json:"id"`
	Text            string     `json:"text"`
	DueAt           time.Time  `json:"due_at"`
	CreatedAt       time.Time  `json:"created_at"`
	DoneAt          *time.Time `json:"done_at,omitempty"`
	Priority        Priority   `json:"priority"`
	Project         string     `json:"project,omitempty"`
	AISuggestedText string     `json:"ai_suggested_text,omitempty"`
}

// Active reports whether the reminder has not been marked done.
func (r *Reminder) Active() bool {
	return r.DoneAt == nil
}

// Overdue reports whether an active reminder is past its due time.
func (r *Reminder) Overdue(now time.Time) bool {
	return r.Active() && !r.DueAt.After(now)
}

// ParsePriority converts user input into a Priority. Matching is
// case-insensitive and accepts the short forms l, m, med and h.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: %q (valid: low, medium, high)", ErrBadPriority, s)
}

// PriorityOrDefault parses s and falls back to def when s is not a known priority.
func PriorityOrDefault(s string, def Priority) Priority {
	p, err := ParsePriority(s)
	if err != nil {
		return def
	}
	return p
}

func validateText(text string) error {
	n := utf8.RuneCountInString(text)
	if strings.TrimSpace(text) == "" || n > MaxTextLength {
		return ErrInvalidText
	}
	return nil
}
