package backend

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/gate"
)

const (
	paddleSignatureHeader = "X-Paddle-Signature"
	maxWebhookBody        = 1 << 20
)

type paddleEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		Attributes struct {
			CustomerEmail string `json:"customer_email"`
			ProductID     string `json:"product_id"`
		} `json:"attributes"`
	} `json:"data"`
}

type webhookResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
}

func productPlans(cfg config.PaddleConfig) map[string]gate.Plan {
	plans := make(map[string]gate.Plan)
	for id, plan := range map[string]gate.Plan{
		cfg.ProductIndie: gate.PlanIndie,
		cfg.ProductPro:   gate.PlanPro,
		cfg.ProductTeam:  gate.PlanTeam,
	} {
		if id != "" {
			plans[id] = plan
		}
	}
	return plans
}

// verifySignature reports whether signature is the hex HMAC-SHA256 of body
// under secret. An empty secret rejects everything.
func verifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandlePaddleWebhook issues a license for subscription.created and
// transaction.completed events whose product maps to a paid plan. All
// other events are acknowledged and ignored.
func (s *Server) HandlePaddleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !verifySignature(s.secret, body, r.Header.Get(paddleSignatureHeader)) {
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event paddleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch event.EventType {
	case "subscription.created", "transaction.completed":
	default:
		respondWithJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	attrs := event.Data.Attributes
	plan, ok := s.products[attrs.ProductID]
	if attrs.CustomerEmail == "" || !ok {
		log.Printf("[backend] Ignoring %s for product %q", event.EventType, attrs.ProductID)
		respondWithJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	user, err := s.gate.CreateUser(r.Context(), attrs.CustomerEmail, plan, nil)
	if err != nil {
		log.Printf("[backend] Failed to issue license: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.mailer.SendLicense(r.Context(), user.Email, user.Token, plan); err != nil {
		log.Printf("[backend] Failed to send license to %s: %v", user.Email, err)
	}

	respondWithJSON(w, http.StatusOK, webhookResponse{OK: true, Token: user.Token})
}
