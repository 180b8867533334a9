package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/gate"
	"github.com/notexe/remind/internal/reminder"
	"github.com/notexe/remind/internal/suggest"
)

type fakeSuggester struct {
	calls int
	err   error
}

func (f *fakeSuggester) Suggest(_ context.Context, text string) (*suggest.Suggestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	hint := "tomorrow 3pm"
	return &suggest.Suggestion{
		SuggestedText:     strings.ToUpper(text[:1]) + text[1:],
		Priority:          reminder.PriorityHigh,
		DueTimeSuggestion: &hint,
		CostCents:         1,
		InputTokens:       100,
		OutputTokens:      50,
	}, nil
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) SendLicense(_ context.Context, email, token string, plan gate.Plan) error {
	m.sent = append(m.sent, email+"|"+token+"|"+string(plan))
	return nil
}

type testEnv struct {
	gate      *gate.Gate
	suggester *fakeSuggester
	mailer    *recordingMailer
	server    *httptest.Server
}

const testSecret = "whsec_test"

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	store, err := gate.OpenStore("sqlite://" + filepath.Join(t.TempDir(), "backend.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	g := gate.New(store, gate.Options{RateLimitRequests: rateLimit, RateLimitWindow: time.Minute})
	env := &testEnv{gate: g, suggester: &fakeSuggester{}, mailer: &recordingMailer{}}

	srv := NewServer(g, env.suggester, env.mailer, config.PaddleConfig{
		WebhookSecret: testSecret,
		ProductPro:    "pro_01",
		ProductTeam:   "pro_team",
	})
	env.server = httptest.NewServer(srv.Router())
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) suggest(t *testing.T, token, text string) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, _ := json.Marshal(SuggestRequest{LicenseToken: token, ReminderText: text})
	resp, err := http.Post(e.server.URL+"/api/v1/suggest-reminder", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 10)
	resp, err := http.Get(env.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]string
	json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != http.StatusOK || out["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, out)
	}
}

func TestSuggestReminder(t *testing.T) {
	env := newTestEnv(t, 10)
	user, _ := env.gate.CreateUser(context.Background(), "a@b.com", gate.PlanPro, nil)

	resp, out := env.suggest(t, user.Token, "  call mom  ")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	if out["suggested_text"] != "Call mom" || out["priority"] != "high" || out["due_time_suggestion"] != "tomorrow 3pm" {
		t.Errorf("body = %v", out)
	}
	if out["cost_cents"] != float64(1) || out["input_tokens"] != float64(100) {
		t.Errorf("billing = %v", out)
	}

	stats, _ := env.gate.UsageStats(context.Background(), user)
	if stats.AIQuotaUsed != 1 || stats.RateLimitRemaining != 9 {
		t.Errorf("stats after call = %+v", stats)
	}
}

func TestSuggestReminderErrors(t *testing.T) {
	env := newTestEnv(t, 10)

	resp, err := http.Post(env.server.URL+"/api/v1/suggest-reminder", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d", resp.StatusCode)
	}

	if resp, _ := env.suggest(t, "whatever", "   "); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty text status = %d", resp.StatusCode)
	}

	resp, out := env.suggest(t, "remind_pro_unknown", "buy milk")
	if resp.StatusCode != http.StatusUnauthorized || out["detail"] != "invalid license token" {
		t.Errorf("bad token = %d %v", resp.StatusCode, out)
	}

	if env.suggester.calls != 0 {
		t.Errorf("provider called %d times for rejected requests", env.suggester.calls)
	}
}

func TestSuggestReminderRateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	user, _ := env.gate.CreateUser(context.Background(), "a@b.com", gate.PlanPro, nil)

	for i := 0; i < 2; i++ {
		if resp, out := env.suggest(t, user.Token, "buy milk"); resp.StatusCode != http.StatusOK {
			t.Fatalf("call %d = %d %v", i+1, resp.StatusCode, out)
		}
	}

	resp, out := env.suggest(t, user.Token, "buy milk")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if detail, _ := out["detail"].(string); !strings.Contains(detail, "rate limit") {
		t.Errorf("detail = %q", detail)
	}
	if env.suggester.calls != 2 {
		t.Errorf("provider calls = %d, want 2", env.suggester.calls)
	}
}

func TestSuggestReminderMonthlyQuota(t *testing.T) {
	env := newTestEnv(t, 100)
	user, _ := env.gate.CreateUser(context.Background(), "free@b.com", gate.PlanFree, nil)

	for i := 0; i < 5; i++ {
		if resp, _ := env.suggest(t, user.Token, "buy milk"); resp.StatusCode != http.StatusOK {
			t.Fatalf("call %d = %d", i+1, resp.StatusCode)
		}
	}
	resp, out := env.suggest(t, user.Token, "buy milk")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if detail, _ := out["detail"].(string); !strings.Contains(detail, "monthly") {
		t.Errorf("detail = %q", detail)
	}
}

func TestSuggestReminderProviderFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", suggest.ErrMalformedResponse, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 10)
			env.suggester.err = tt.err
			user, _ := env.gate.CreateUser(context.Background(), "a@b.com", gate.PlanPro, nil)

			resp, _ := env.suggest(t, user.Token, "buy milk")
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}

			stats, _ := env.gate.UsageStats(context.Background(), user)
			if stats.AIQuotaUsed != 0 {
				t.Errorf("failed call was logged: %+v", stats)
			}
		})
	}
}

func TestUsageStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, 10)
	user, _ := env.gate.CreateUser(context.Background(), "a@b.com", gate.PlanIndie, nil)
	env.suggest(t, user.Token, "buy milk")

	resp, err := http.Get(env.server.URL + "/api/v1/usage-stats?license_token=" + user.Token)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats gate.Stats
	json.NewDecoder(resp.Body).Decode(&stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if stats.PlanTier != gate.PlanIndie || stats.AIQuotaUsed != 1 || stats.AIQuotaTotal != 100 || stats.ThisMonthCostCents != 1 {
		t.Errorf("stats = %+v", stats)
	}

	resp2, err := http.Get(env.server.URL + "/api/v1/usage-stats")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token status = %d", resp2.StatusCode)
	}
}
