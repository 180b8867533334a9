package license

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrPremiumRequired is returned when a premium feature is used without a license.
var ErrPremiumRequired = errors.New("this feature requires a premium license (run `remind license --token <TOKEN>`)")

const minTokenLength = 10

// License is the locally stored license token.
type License struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	Email     string    `json:"email,omitempty"`
}

// Manager loads and saves the license file and guards premium features.
type Manager struct {
	path string

	mu      sync.Mutex
	license *License
}

// NewManager creates a manager for the license file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// HasLicense reports whether a readable, well-formed license exists.
func (m *Manager) HasLicense() bool {
	l, err := m.Get()
	return err == nil && l != nil
}

// Get returns the current license, or nil when no license file exists.
func (m *Manager) Get() (*License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.license != nil {
		return m.license, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read license: %w", err)
	}

	var l License
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("could not load license: %w", err)
	}
	if len(l.Token) < minTokenLength {
		return nil, fmt.Errorf("could not load license: invalid token")
	}

	m.license = &l
	return m.license, nil
}

// Save stores a new license token, replacing any existing one.
func (m *Manager) Save(token, email string) (*License, error) {
	token = strings.TrimSpace(token)
	if len(token) < minTokenLength {
		return nil, fmt.Errorf("license token must be at least %d characters", minTokenLength)
	}

	l := &License{
		Token:     token,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Email:     strings.TrimSpace(email),
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode license: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create license directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write license: %w", err)
	}

	m.mu.Lock()
	m.license = l
	m.mu.Unlock()

	return l, nil
}

// RequirePremium returns ErrPremiumRequired unless a license is present.
func (m *Manager) RequirePremium() error {
	if !m.HasLicense() {
		return ErrPremiumRequired
	}
	return nil
}
