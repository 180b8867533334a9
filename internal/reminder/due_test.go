package reminder

import (
	"testing"
	"time"
)

func TestParseDue(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, loc)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-12T08:00:00Z", time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)},
		{"2025-03-12 08:15", time.Date(2025, 3, 12, 8, 15, 0, 0, loc)},
		{"2025-03-12", time.Date(2025, 3, 12, 9, 0, 0, 0, loc)},
		{"now", now},
		{"in 2 hours", now.Add(2 * time.Hour)},
		{"in 30m", now.Add(30 * time.Minute)},
		{"in 3 days", now.Add(72 * time.Hour)},
		{"90m", now.Add(90 * time.Minute)},
		{"17:45", time.Date(2025, 3, 10, 17, 45, 0, 0, loc)},
		{"3pm", time.Date(2025, 3, 10, 15, 0, 0, 0, loc)},
		{"12am", time.Date(2025, 3, 10, 0, 0, 0, 0, loc)},
		{"tomorrow", time.Date(2025, 3, 11, 9, 0, 0, 0, loc)},
		{"Tomorrow 5pm", time.Date(2025, 3, 11, 17, 0, 0, 0, loc)},
		{"today at 9:30am", time.Date(2025, 3, 10, 9, 30, 0, 0, loc)},
		{"tonight", time.Date(2025, 3, 10, 20, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := ParseDue(tt.in, now, loc)
		if err != nil {
			t.Errorf("ParseDue(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDueRejectsGarbage(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"", "whenever", "5", "25:00", "13pm", "tomorrow-ish"} {
		if _, err := ParseDue(in, now, time.UTC); err == nil {
			t.Errorf("ParseDue(%q) should fail", in)
		}
	}
}

func TestDefaultDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	loc := time.FixedZone("JST", 9*3600)

	got := DefaultDue(now, loc)
	want := time.Date(2025, 3, 11, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("DefaultDue = %v, want %v", got, want)
	}
}
