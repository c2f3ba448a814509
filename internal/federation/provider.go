// Package federation drives login through external OAuth identity
// providers: redirect out with an anti-forgery state, exchange the returned
// authorization code for an access token, fetch the provider's notion of
// the current user, and resolve that login name to a local account.
package federation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Provider is a single OAuth identity provider.
type Provider interface {
	// Name returns the provider identifier used in routes (e.g. "github").
	Name() string

	// AuthCodeURL constructs the provider's authorization URL carrying the
	// given anti-forgery state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token. A response
	// without an access token is an error, never an empty string.
	Exchange(ctx context.Context, code string) (accessToken string, err error)

	// FetchUsername retrieves the provider's login name for the
	// authenticated user.
	FetchUsername(ctx context.Context, accessToken string) (string, error)
}

// Registry manages registered identity providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// generateState creates a random anti-forgery state parameter.
func generateState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
