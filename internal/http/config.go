package http

import (
	"pressroom/internal/audit"
	"pressroom/internal/auth"
	"pressroom/internal/database/posts"
	"pressroom/internal/federation"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Posts   *posts.Repository
	Auditor *audit.Recorder

	// Authentication
	SessionManager       *auth.SessionManager
	AuthMiddleware       *auth.Middleware
	AuthController       *auth.Controller
	FederationController *federation.Controller

	// CSRF protection. Disabled when the secret is empty (tests).
	CSRFSecret    []byte
	SecureCookies bool

	// UI paths
	TemplatesPath string
}
