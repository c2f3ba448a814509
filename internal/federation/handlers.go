package federation

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pressroom/internal/audit"
	"pressroom/internal/auth"
	"pressroom/internal/database/users"
)

const defaultRequestTimeout = 5 * time.Second

// Controller handles the two federation handshake endpoints.
type Controller struct {
	registry *Registry
	users    *users.Repository
	sessions *auth.SessionManager
	auditor  *audit.Recorder
	timeout  time.Duration
}

// NewController creates the federation controller. timeout bounds the
// provider-facing token and profile calls.
func NewController(registry *Registry, repo *users.Repository, sessions *auth.SessionManager, auditor *audit.Recorder, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Controller{
		registry: registry,
		users:    repo,
		sessions: sessions,
		auditor:  auditor,
		timeout:  timeout,
	}
}

// RegisterRoutes registers the handshake endpoints on the router.
func (fc *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/auth/:provider", fc.Initiate)
	router.GET("/auth/:provider/callback", fc.Callback)
}

// Initiate redirects the client to the provider's authorization page. The
// anti-forgery state is stashed in the session for the callback to verify.
func (fc *Controller) Initiate(c *gin.Context) {
	provider, err := fc.registry.Get(c.Param("provider"))
	if err != nil {
		c.String(http.StatusNotFound, "Unknown login provider")
		return
	}

	state, err := generateState()
	if err != nil {
		log.Printf("Federation: failed to generate state: %v", err)
		c.String(http.StatusInternalServerError, "Login is temporarily unavailable")
		return
	}
	fc.sessions.PutOAuthState(c.Request.Context(), state)

	c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

// Callback completes the handshake: verify state, exchange the code, fetch
// the provider profile, resolve or create the local account, and bind the
// session. Every provider-side failure surfaces as a generic message and
// leaves the session anonymous.
func (fc *Controller) Callback(c *gin.Context) {
	provider, err := fc.registry.Get(c.Param("provider"))
	if err != nil {
		c.String(http.StatusNotFound, "Unknown login provider")
		return
	}

	expected := fc.sessions.TakeOAuthState(c.Request.Context())
	if expected == "" || c.Query("state") != expected {
		c.String(http.StatusForbidden, "Login request could not be verified. Please start over.")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadGateway, "Login with the provider failed. Please try again.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), fc.timeout)
	defer cancel()

	accessToken, err := provider.Exchange(ctx, code)
	if err != nil {
		log.Printf("Federation: token exchange with %s failed: %v", provider.Name(), err)
		c.String(http.StatusBadGateway, "Login with the provider failed. Please try again.")
		return
	}

	login, err := provider.FetchUsername(ctx, accessToken)
	if err != nil {
		log.Printf("Federation: profile fetch from %s failed: %v", provider.Name(), err)
		c.String(http.StatusBadGateway, "Login with the provider failed. Please try again.")
		return
	}

	user, err := fc.users.GetOrCreateByUsername(login)
	if err != nil {
		log.Printf("Federation: failed to resolve user %q: %v", login, err)
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if err := fc.sessions.Bind(c.Request.Context(), user.ID, true); err != nil {
		log.Printf("Federation: failed to bind session: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	fc.auditor.FederatedLogin(user.ID, user.Username, provider.Name())
	c.Redirect(http.StatusFound, "/")
}
