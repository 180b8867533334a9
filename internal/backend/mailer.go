package backend

import (
	"context"
	"log"

	"github.com/notexe/remind/internal/gate"
)

// LicenseMailer delivers a newly issued license token to its owner.
type LicenseMailer interface {
	SendLicense(ctx context.Context, email, token string, plan gate.Plan) error
}

// LogMailer writes the license to the server log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendLicense(_ context.Context, email, token string, plan gate.Plan) error {
	log.Printf("[backend] License for %s (%s plan): %s", email, plan, token)
	return nil
}
