package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notexe/remind/internal/api"
	"github.com/notexe/remind/internal/reminder"
)

// ErrMalformedResponse is returned when the provider reply cannot be used:
// empty content, content that is not a JSON object, or no token usage.
var ErrMalformedResponse = errors.New("malformed AI response")

const promptTemplate = `You are a helpful reminder assistant. The user has entered a reminder: %q

Your task:
1. Rephrase it to be clear and concise
2. Determine priority (low, medium, high) based on urgency/importance
3. If a time is mentioned, extract due_time_suggestion, otherwise null

Respond ONLY with valid JSON (no markdown, no backticks):
{
  "suggested_text": "Clear rephrased reminder",
  "priority": "low|medium|high",
  "due_time_suggestion": "time or null"
}`

// Suggestion is the improved reminder returned to the caller, with the
// billing data for the call that produced it.
type Suggestion struct {
	SuggestedText     string            `json:"suggested_text"`
	Priority          reminder.Priority `json:"priority"`
	DueTimeSuggestion *string           `json:"due_time_suggestion"`
	CostCents         int               `json:"cost_cents"`
	InputTokens       int               `json:"input_tokens"`
	OutputTokens      int               `json:"output_tokens"`
}

// Options configures a Suggester.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Suggester asks an AI provider to rephrase and prioritise reminder text.
type Suggester struct {
	provider api.Provider
	opts     Options
	rates    Rates
}

func New(provider api.Provider, opts Options) *Suggester {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Suggester{provider: provider, opts: opts, rates: RatesFor(opts.Model)}
}

// Suggest makes exactly one provider call, bounded by the configured timeout.
func (s *Suggester) Suggest(ctx context.Context, text string) (*Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	resp, err := s.provider.SendMessage(ctx, api.MessageRequest{
		Model:       s.opts.Model,
		Messages:    []api.Message{{Role: "user", Content: fmt.Sprintf(promptTemplate, text)}},
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", s.provider.Name(), err)
	}

	return s.parse(text, resp)
}

func (s *Suggester) parse(text string, resp *api.MessageResponse) (*Suggestion, error) {
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResponse)
	}

	if resp.Usage == nil {
		return nil, fmt.Errorf("%w: no usage data", ErrMalformedResponse)
	}

	out := &Suggestion{
		SuggestedText: text,
		Priority:      reminder.PriorityMedium,
		InputTokens:   resp.Usage.InputTokens,
		OutputTokens:  resp.Usage.OutputTokens,
		CostCents:     s.rates.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}

	if v, ok := data["suggested_text"].(string); ok && strings.TrimSpace(v) != "" {
		out.SuggestedText = strings.TrimSpace(v)
	}
	if v, ok := data["priority"].(string); ok {
		out.Priority = reminder.PriorityOrDefault(v, reminder.PriorityMedium)
	}
	if v, ok := data["due_time_suggestion"].(string); ok {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, "null") {
			out.DueTimeSuggestion = &v
		}
	}

	return out, nil
}
