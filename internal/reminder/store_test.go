package reminder

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "reminders.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAddAndGet(t *testing.T) {
	store := newTestStore(t)
	due := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	added, err := store.Add("Buy milk", due, PriorityHigh, "home", "Buy 2L of milk")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == 0 {
		t.Fatal("expected an assigned ID")
	}

	got, err := store.Get(added.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "Buy milk" || got.Priority != PriorityHigh || got.Project != "home" {
		t.Errorf("unexpected reminder: %+v", got)
	}
	if got.AISuggestedText != "Buy 2L of milk" {
		t.Errorf("AISuggestedText = %q", got.AISuggestedText)
	}
	if !got.DueAt.Equal(due) {
		t.Errorf("DueAt = %v, want %v", got.DueAt, due)
	}
	if !got.Active() {
		t.Error("new reminder should be active")
	}
}

func TestStoreAddValidatesText(t *testing.T) {
	store := newTestStore(t)

	for _, text := range []string{"", "   ", strings.Repeat("x", MaxTextLength+1)} {
		if _, err := store.Add(text, time.Now(), PriorityMedium, "", ""); !errors.Is(err, ErrInvalidText) {
			t.Errorf("Add(%d chars) error = %v, want ErrInvalidText", len(text), err)
		}
	}

	if _, err := store.Add(strings.Repeat("é", MaxTextLength), time.Now(), PriorityMedium, "", ""); err != nil {
		t.Errorf("1000 multi-byte characters should be accepted: %v", err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestStoreListOrdering(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	store.Add("later", now.Add(2*time.Hour), PriorityLow, "", "")
	first, _ := store.Add("first", now.Add(-time.Hour), PriorityLow, "", "")
	store.Add("middle", now.Add(time.Hour), PriorityLow, "", "")

	if _, err := store.MarkDone(first.ID); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	active, err := store.ListActive()
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 || active[0].Text != "middle" || active[1].Text != "later" {
		t.Errorf("ListActive = %v", texts(active))
	}

	all, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if got := texts(all); strings.Join(got, ",") != "first,middle,later" {
		t.Errorf("ListAll = %v", got)
	}
}

func TestStoreDueNow(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.Add("past task", now.Add(-time.Hour), PriorityMedium, "", "")
	store.Add("exactly now", now, PriorityMedium, "", "")
	store.Add("future task", now.Add(24*time.Hour), PriorityMedium, "", "")
	done, _ := store.Add("done task", now.Add(-2*time.Hour), PriorityMedium, "", "")
	store.MarkDone(done.ID)

	due, err := store.DueNow(now)
	if err != nil {
		t.Fatalf("DueNow: %v", err)
	}
	if got := texts(due); strings.Join(got, ",") != "past task,exactly now" {
		t.Errorf("DueNow = %v", got)
	}
}

func TestStoreMarkDone(t *testing.T) {
	store := newTestStore(t)
	created := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return created })

	r, _ := store.Add("Task 1", created.Add(time.Hour), PriorityMedium, "", "")

	// a clock running behind must not produce done_at < created_at
	store.SetClock(func() time.Time { return created.Add(-time.Minute) })
	done, err := store.MarkDone(r.ID)
	if err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if done.DoneAt == nil || done.DoneAt.Before(done.CreatedAt) {
		t.Fatalf("DoneAt = %v, CreatedAt = %v", done.DoneAt, done.CreatedAt)
	}

	store.SetClock(func() time.Time { return created.Add(time.Hour) })
	again, err := store.MarkDone(r.ID)
	if err != nil {
		t.Fatalf("second MarkDone: %v", err)
	}
	if !again.DoneAt.Equal(*done.DoneAt) {
		t.Errorf("MarkDone should be idempotent, DoneAt moved to %v", again.DoneAt)
	}

	if _, err := store.MarkDone(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkDone(999) error = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	r, _ := store.Add("temp", time.Now(), PriorityMedium, "", "")

	ok, err := store.Delete(r.ID)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	ok, err = store.Delete(r.ID)
	if err != nil || ok {
		t.Fatalf("second Delete = %v, %v; want false, nil", ok, err)
	}
}

func TestStoreSearch(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	store.Add("Call mom", now, PriorityMedium, "", "")
	store.Add("call dad", now.Add(time.Minute), PriorityMedium, "", "")
	store.Add("Email boss", now, PriorityMedium, "", "")
	store.Add("100% done_ish", now, PriorityMedium, "", "")

	got, err := store.Search("CALL")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if strings.Join(texts(got), ",") != "Call mom,call dad" {
		t.Errorf("Search(CALL) = %v", texts(got))
	}

	got, _ = store.Search("%")
	if len(got) != 1 || got[0].Text != "100% done_ish" {
		t.Errorf("Search(%%) should match literally, got %v", texts(got))
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	r, _ := store.Add("draft", time.Now(), PriorityLow, "", "")

	text := "final"
	prio := PriorityHigh
	updated, err := store.Update(r.ID, UpdateFields{Text: &text, Priority: &prio})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Text != "final" || updated.Priority != PriorityHigh {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if _, err := store.Update(999, UpdateFields{Text: &text}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(999) error = %v, want ErrNotFound", err)
	}
}

func TestStoreListByProject(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	a, _ := store.Add("a", now, PriorityMedium, "work", "")
	store.Add("b", now, PriorityMedium, "work", "")
	store.Add("c", now, PriorityMedium, "home", "")
	store.MarkDone(a.ID)

	active, _ := store.ListByProject("work", false)
	if len(active) != 1 || active[0].Text != "b" {
		t.Errorf("active work = %v", texts(active))
	}
	all, _ := store.ListByProject("work", true)
	if len(all) != 2 {
		t.Errorf("all work = %v", texts(all))
	}
}

func TestParseTimeNaiveIsUTC(t *testing.T) {
	got, err := parseTime("2025-01-30 12:05:00")
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	want := time.Date(2025, 1, 30, 12, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseTime = %v, want %v", got, want)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"high", PriorityHigh, false},
		{"HIGH", PriorityHigh, false},
		{"med", PriorityMedium, false},
		{"l", PriorityLow, false},
		{"urgent", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func texts(rs []Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text
	}
	return out
}
