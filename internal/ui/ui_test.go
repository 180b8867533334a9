package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/notexe/remind/internal/reminder"
)

func TestFormatReminderList(t *testing.T) {
	f := NewFormatter(false, time.UTC)
	now := time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)
	done := now.Add(-time.Hour)

	rs := []reminder.Reminder{
		{ID: 1, Text: "pay rent", DueAt: now.Add(-2 * time.Hour), Priority: reminder.PriorityHigh},
		{ID: 2, Text: "buy milk", DueAt: now.Add(3 * time.Hour), Priority: reminder.PriorityLow, Project: "home"},
		{ID: 3, Text: "dentist", DueAt: now.Add(48 * time.Hour), Priority: reminder.PriorityMedium},
		{ID: 4, Text: "old", DueAt: now.Add(-48 * time.Hour), DoneAt: &done, Priority: reminder.PriorityMedium},
	}

	out := f.FormatReminderList(rs, now)
	for _, want := range []string{
		"Reminders: 4 total, 1 overdue, 1 today, 1 upcoming, 1 done",
		"Overdue\n○ #1 pay rent\n  Thu Jan 30 10:00 [high]",
		"Due today\n○ #2 buy milk @home",
		"Upcoming\n○ #3 dentist",
		"Done\n✓ #4 old",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatReminderListEmpty(t *testing.T) {
	if got := NewFormatter(false, nil).FormatReminderList(nil, time.Now()); got != "No reminders found." {
		t.Errorf("got %q", got)
	}
}

func TestFormatReminderListCapsUpcoming(t *testing.T) {
	now := time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)
	var rs []reminder.Reminder
	for i := 0; i < 13; i++ {
		rs = append(rs, reminder.Reminder{ID: int64(i + 1), Text: "x", DueAt: now.Add(time.Duration(i+2) * 24 * time.Hour)})
	}
	out := NewFormatter(false, time.UTC).FormatReminderList(rs, now)
	if !strings.Contains(out, "... and 3 more") {
		t.Errorf("upcoming not capped:\n%s", out)
	}
}

func TestFormatReminderShowsSuggestion(t *testing.T) {
	r := &reminder.Reminder{ID: 7, Text: "call mom", AISuggestedText: "Call mom at 3pm", Priority: reminder.PriorityMedium}
	out := NewFormatter(false, time.UTC).FormatReminder(r, true)
	if !strings.Contains(out, "Suggested: Call mom at 3pm") {
		t.Errorf("got %q", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2\n", true},
		{"yes\n", true},
		{"1\n", false},
		{"No\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm("Delete?", false, strings.NewReader(tt.input), &out)
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "[2] Yes") {
			t.Errorf("menu not printed: %q", out.String())
		}
	}
}

func TestConfirmEOF(t *testing.T) {
	_, err := Confirm("Delete?", false, strings.NewReader(""), &bytes.Buffer{})
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}

func TestRenderMarkdownPlain(t *testing.T) {
	out := NewFormatter(false, time.UTC).RenderMarkdown("# Usage\n\n- Plan: **pro**\n")
	if !strings.Contains(out, "Usage") || !strings.Contains(out, "pro") {
		t.Errorf("rendered = %q", out)
	}
}
