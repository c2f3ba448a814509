package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pressroom/internal/database/users"
	"pressroom/internal/entities"
)

// Context keys for resolved identity
const (
	ContextKeyUser  = "auth_user"
	ContextKeyState = "auth_state"
)

// Middleware resolves the session on every inbound request and exposes the
// derived identity to handlers. Resolution always happens before any route
// work; gating is opt-in per route via RequireAuthenticated.
type Middleware struct {
	users    *users.Repository
	sessions *SessionManager
}

// NewMiddleware creates the request identity middleware.
func NewMiddleware(users *users.Repository, sessions *SessionManager) *Middleware {
	return &Middleware{users: users, sessions: sessions}
}

// LoadUser resolves the session state and, for authenticated sessions, loads
// the user record into the request context. A bound user ID that no longer
// resolves to a user is treated as anonymous rather than an error.
func (m *Middleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := m.sessions.Resolve(c.Request)
		c.Set(ContextKeyState, state)

		if state.IsAuthenticated() {
			if user, err := m.users.GetByID(state.UserID); err == nil {
				c.Set(ContextKeyUser, user)
			} else {
				c.Set(ContextKeyState, Anonymous)
			}
		}

		c.Next()
	}
}

// RequireAuthenticated gates a route on an authenticated session. Anonymous
// callers are redirected to the login form, not refused outright, since
// anonymous browsing elsewhere remains legal.
func (m *Middleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionStateFrom(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionStateFrom returns the resolved session state for the request.
func SessionStateFrom(c *gin.Context) SessionState {
	if v, exists := c.Get(ContextKeyState); exists {
		if state, ok := v.(SessionState); ok {
			return state
		}
	}
	return Anonymous
}

// CurrentUser returns the authenticated user, or nil for anonymous sessions.
func CurrentUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}
