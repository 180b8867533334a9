package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/gate"
	"github.com/notexe/remind/internal/reminder"
	"github.com/notexe/remind/internal/suggest"
)

// Suggester produces one AI suggestion per call.
type Suggester interface {
	Suggest(ctx context.Context, text string) (*suggest.Suggestion, error)
}

type SuggestRequest struct {
	LicenseToken string `json:"license_token"`
	ReminderText string `json:"reminder_text"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server is the HTTP surface of the remote gate.
type Server struct {
	gate      *gate.Gate
	suggester Suggester
	mailer    LicenseMailer
	products  map[string]gate.Plan
	secret    string
}

func NewServer(g *gate.Gate, s Suggester, mailer LicenseMailer, paddle config.PaddleConfig) *Server {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Server{
		gate:      g,
		suggester: s,
		mailer:    mailer,
		products:  productPlans(paddle),
		secret:    paddle.WebhookSecret,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/health", s.HandleHealth)
	r.Post("/webhooks/paddle", s.HandlePaddleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/suggest-reminder", s.HandleSuggestReminder)
		r.Get("/usage-stats", s.HandleUsageStats)
	})

	return r
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSuggestReminder runs the gate checks in order, makes the billed AI
// call and records it. A request rejected by any check never reaches the
// provider and is not counted.
func (s *Server) HandleSuggestReminder(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	text := strings.TrimSpace(req.ReminderText)
	if text == "" {
		respondWithError(w, http.StatusBadRequest, "reminder_text is required")
		return
	}
	if utf8.RuneCountInString(text) > reminder.MaxTextLength {
		respondWithError(w, http.StatusBadRequest, "reminder_text is too long")
		return
	}

	ctx := r.Context()

	user, err := s.gate.Authenticate(ctx, req.LicenseToken)
	if err != nil {
		respondWithGateError(w, err)
		return
	}
	if _, err := s.gate.CheckRateLimit(ctx, user.ID); err != nil {
		respondWithGateError(w, err)
		return
	}
	if err := s.gate.CheckAIQuota(ctx, user); err != nil {
		respondWithGateError(w, err)
		return
	}
	if err := s.gate.IncrementRateLimit(ctx, user.ID); err != nil {
		respondWithGateError(w, err)
		return
	}

	suggestion, err := s.suggester.Suggest(ctx, text)
	if err != nil {
		log.Printf("[backend] Suggestion for user %d failed: %v", user.ID, err)
		if errors.Is(err, suggest.ErrMalformedResponse) {
			respondWithError(w, http.StatusBadGateway, "AI provider returned an invalid response")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "AI suggestion failed")
		return
	}

	if _, err := s.gate.LogUsage(ctx, user.ID, suggestion.InputTokens, suggestion.OutputTokens, suggestion.CostCents); err != nil {
		respondWithGateError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, suggestion)
}

func (s *Server) HandleUsageStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.gate.Authenticate(ctx, r.URL.Query().Get("license_token"))
	if err != nil {
		respondWithGateError(w, err)
		return
	}

	stats, err := s.gate.UsageStats(ctx, user)
	if err != nil {
		respondWithGateError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func respondWithGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gate.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, gate.ErrQuotaExceeded):
		respondWithError(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Printf("[backend] Gate error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Detail: message})
}
