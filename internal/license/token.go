package license

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const tokenPrefix = "remind_"

// NewToken issues a license token of the form remind_<plan>_<24 hex chars>.
func NewToken(plan string) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return fmt.Sprintf("%s%s_%s", tokenPrefix, plan, hex.EncodeToString(buf)), nil
}
