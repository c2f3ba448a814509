package auth

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"pressroom/internal/config"
)

// Session data keys
const (
	SessionKeyUserID     = "user_id"
	SessionKeyOAuthState = "oauth_state"
	SessionKeyFederated  = "federated" // set when the session was bound via a provider
)

// SessionState is the resolved state of an inbound request's session:
// either anonymous or authenticated with a bound user ID.
type SessionState struct {
	UserID    uint
	Federated bool
}

// Anonymous is the state of requests without a live bound session.
var Anonymous = SessionState{}

// IsAuthenticated reports whether a user ID is bound to the session.
func (s SessionState) IsAuthenticated() bool {
	return s.UserID != 0
}

// SessionManager wraps scs.SessionManager with application-specific methods.
//
// Sessions have a fixed TTL from issuance: no idle timeout is configured, so
// expiry is never extended by activity.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by the
// database. The sqlDB parameter should be the underlying *sql.DB from GORM.
// The store's own cleanup goroutine is disabled; expired rows are pruned by
// the cleanup scheduler instead.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(sqlDB, 0)

	// Fixed lifetime from issuance. IdleTimeout is deliberately left unset:
	// resolving a session must not slide its expiry.
	sm.Lifetime = cfg.SessionLifetime

	// Cookie security. Lax rather than Strict so the cookie still rides the
	// top-level redirect back from the OAuth provider.
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// Bind transitions the request's session to authenticated, binding the user
// ID. Called exactly once per successful local login or OAuth callback. The
// token is renewed first so an authenticated session never keeps the token
// it had while anonymous (session fixation), which also means a user ID is
// never rebound under an old token.
func (sm *SessionManager) Bind(ctx context.Context, userID uint, federated bool) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, SessionKeyUserID, int(userID))
	if federated {
		sm.Put(ctx, SessionKeyFederated, true)
	}
	return nil
}

// Resolve returns the session state for the request. Unknown or expired
// tokens resolve to Anonymous; expiry is enforced by the store and never
// extended here.
func (sm *SessionManager) Resolve(r *http.Request) SessionState {
	userID := uint(sm.GetInt(r.Context(), SessionKeyUserID))
	if userID == 0 {
		return Anonymous
	}
	return SessionState{
		UserID:    userID,
		Federated: sm.GetBool(r.Context(), SessionKeyFederated),
	}
}

// Destroy removes the session synchronously; the old token never resolves
// to an authenticated state again.
func (sm *SessionManager) Destroy(ctx context.Context) error {
	return sm.SessionManager.Destroy(ctx)
}

// PutOAuthState stashes the anti-forgery state for a pending federation
// handshake in the session.
func (sm *SessionManager) PutOAuthState(ctx context.Context, state string) {
	sm.Put(ctx, SessionKeyOAuthState, state)
}

// TakeOAuthState returns and clears the stashed federation state.
func (sm *SessionManager) TakeOAuthState(ctx context.Context) string {
	state := sm.GetString(ctx, SessionKeyOAuthState)
	sm.Remove(ctx, SessionKeyOAuthState)
	return state
}
