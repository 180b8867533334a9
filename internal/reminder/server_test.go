package reminder

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	store := newTestStore(t)
	now := time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	s := NewServer(store, time.UTC)
	s.now = func() time.Time { return now }
	return s, store
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestServerAddReminder(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleAddReminder(ctx, callRequest(map[string]any{
		"text":     "Pay rent",
		"due":      "tomorrow 10am",
		"priority": "h",
		"project":  "home",
	}))
	if err != nil || res.IsError {
		t.Fatalf("add_reminder: %v %s", err, resultText(t, res))
	}

	var added Reminder
	if err := json.Unmarshal([]byte(resultText(t, res)), &added); err != nil {
		t.Fatalf("result is not a reminder: %v", err)
	}
	if added.Priority != PriorityHigh || added.Project != "home" {
		t.Errorf("added = %+v", added)
	}
	if want := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC); !added.DueAt.Equal(want) {
		t.Errorf("due = %v, want %v", added.DueAt, want)
	}
	if _, err := store.Get(added.ID); err != nil {
		t.Errorf("Get: %v", err)
	}
}

func TestServerAddReminderErrors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing text", map[string]any{}},
		{"bad due", map[string]any{"text": "x", "due": "whenever"}},
		{"bad priority", map[string]any{"text": "x", "priority": "urgent"}},
		{"text too long", map[string]any{"text": strings.Repeat("a", MaxTextLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleAddReminder(ctx, callRequest(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

func TestServerListCompleteDelete(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()
	now := s.now()

	store.Add("overdue", now.Add(-time.Hour), PriorityMedium, "", "")
	store.Add("later", now.Add(time.Hour), PriorityLow, "work", "")

	res, _ := s.handleGetDueReminders(ctx, callRequest(nil))
	if text := resultText(t, res); !strings.Contains(text, `"overdue"`) || strings.Contains(text, `"later"`) {
		t.Errorf("get_due_reminders = %s", text)
	}

	res, _ = s.handleCompleteReminder(ctx, callRequest(map[string]any{"id": float64(1)}))
	if res.IsError {
		t.Fatalf("complete_reminder: %s", resultText(t, res))
	}

	res, _ = s.handleListReminders(ctx, callRequest(map[string]any{"status": "done"}))
	if text := resultText(t, res); !strings.Contains(text, `"overdue"`) || strings.Contains(text, `"later"`) {
		t.Errorf("list done = %s", text)
	}
	res, _ = s.handleListReminders(ctx, callRequest(map[string]any{"status": "bogus"}))
	if !res.IsError {
		t.Error("unknown status accepted")
	}

	res, _ = s.handleSearchReminders(ctx, callRequest(map[string]any{"query": "LATER"}))
	if !strings.Contains(resultText(t, res), `"later"`) {
		t.Errorf("search = %s", resultText(t, res))
	}

	res, _ = s.handleDeleteReminder(ctx, callRequest(map[string]any{"id": float64(2)}))
	if res.IsError {
		t.Fatalf("delete_reminder: %s", resultText(t, res))
	}
	res, _ = s.handleDeleteReminder(ctx, callRequest(map[string]any{"id": float64(2)}))
	if !res.IsError {
		t.Error("deleting twice should fail")
	}

	res, _ = s.handleCompleteReminder(ctx, callRequest(map[string]any{}))
	if !res.IsError {
		t.Error("missing id accepted")
	}
}

func TestServerUpdateReminder(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()
	store.Add("draft", s.now(), PriorityLow, "", "")

	res, _ := s.handleUpdateReminder(ctx, callRequest(map[string]any{"id": float64(1), "text": "final", "priority": "high"}))
	if res.IsError {
		t.Fatalf("update_reminder: %s", resultText(t, res))
	}
	r, _ := store.Get(1)
	if r.Text != "final" || r.Priority != PriorityHigh {
		t.Errorf("updated = %+v", r)
	}

	res, _ = s.handleUpdateReminder(ctx, callRequest(map[string]any{"id": float64(9), "text": "x"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("update missing = %s", resultText(t, res))
	}
}
