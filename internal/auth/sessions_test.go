package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pressroom/internal/config"
	"pressroom/internal/entities"
)

func setupSessionManager(t *testing.T, lifetime time.Duration) *SessionManager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	cfg := config.Auth{
		SessionLifetime: lifetime,
		SecureCookies:   false,
	}

	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// loadSession loads a token into a fresh session context, the way the
// middleware would for an inbound request.
func loadSession(t *testing.T, sm *SessionManager, token string) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return ctx
}

// commitSession persists the session and returns its token.
func commitSession(t *testing.T, sm *SessionManager, ctx context.Context) string {
	t.Helper()
	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("failed to commit session: %v", err)
	}
	return token
}

func resolveToken(t *testing.T, sm *SessionManager, token string) SessionState {
	t.Helper()
	ctx := loadSession(t, sm, token)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	return sm.Resolve(req)
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	if sm.Cookie.Name != "session" {
		t.Errorf("Expected cookie name 'session', got '%s'", sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Expected SameSiteLaxMode, got %v", sm.Cookie.SameSite)
	}
	if sm.Lifetime != time.Hour {
		t.Errorf("Expected 1h lifetime, got %v", sm.Lifetime)
	}
	// No idle timeout: expiry is fixed from issuance and never slides.
	if sm.IdleTimeout != 0 {
		t.Errorf("Expected zero idle timeout, got %v", sm.IdleTimeout)
	}
}

func TestSessionManager_BindAndResolve(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	ctx := loadSession(t, sm, "")
	if err := sm.Bind(ctx, 42, false); err != nil {
		t.Fatalf("failed to bind session: %v", err)
	}
	token := commitSession(t, sm, ctx)

	state := resolveToken(t, sm, token)
	if !state.IsAuthenticated() {
		t.Fatal("bound session should resolve as authenticated")
	}
	if state.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", state.UserID)
	}
	if state.Federated {
		t.Error("local login should not be marked federated")
	}
}

func TestSessionManager_BindFederated(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	ctx := loadSession(t, sm, "")
	if err := sm.Bind(ctx, 7, true); err != nil {
		t.Fatalf("failed to bind session: %v", err)
	}
	token := commitSession(t, sm, ctx)

	state := resolveToken(t, sm, token)
	if state.UserID != 7 || !state.Federated {
		t.Errorf("Expected federated state for user 7, got %+v", state)
	}
}

// Binding a user must renew the token so an authenticated session never
// keeps the token it had while anonymous.
func TestSessionManager_BindRenewsToken(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	// Establish an anonymous session with a persisted token.
	ctx := loadSession(t, sm, "")
	sm.PutOAuthState(ctx, "pre-login-state")
	anonToken := commitSession(t, sm, ctx)

	// Log in on that session.
	ctx = loadSession(t, sm, anonToken)
	if err := sm.Bind(ctx, 42, false); err != nil {
		t.Fatalf("failed to bind session: %v", err)
	}
	boundToken := commitSession(t, sm, ctx)

	if boundToken == anonToken {
		t.Error("token should be renewed on login")
	}
	if state := resolveToken(t, sm, anonToken); state.IsAuthenticated() {
		t.Error("pre-login token should not resolve to an authenticated session")
	}
}

func TestSessionManager_UnknownTokenIsAnonymous(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	state := resolveToken(t, sm, "no-such-token")
	if state != Anonymous {
		t.Errorf("Expected anonymous state, got %+v", state)
	}
}

func TestSessionManager_Destroy(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	ctx := loadSession(t, sm, "")
	if err := sm.Bind(ctx, 42, false); err != nil {
		t.Fatalf("failed to bind session: %v", err)
	}
	token := commitSession(t, sm, ctx)

	ctx = loadSession(t, sm, token)
	if err := sm.Destroy(ctx); err != nil {
		t.Fatalf("failed to destroy session: %v", err)
	}

	if state := resolveToken(t, sm, token); state.IsAuthenticated() {
		t.Error("destroyed token should never resolve to an authenticated session")
	}
}

func TestSessionManager_ExpiredSessionIsAnonymous(t *testing.T) {
	sm := setupSessionManager(t, 50*time.Millisecond)

	ctx := loadSession(t, sm, "")
	if err := sm.Bind(ctx, 42, false); err != nil {
		t.Fatalf("failed to bind session: %v", err)
	}
	token := commitSession(t, sm, ctx)

	time.Sleep(100 * time.Millisecond)

	if state := resolveToken(t, sm, token); state.IsAuthenticated() {
		t.Error("expired token should resolve to an anonymous session")
	}
}

func TestSessionManager_TakeOAuthState(t *testing.T) {
	sm := setupSessionManager(t, time.Hour)

	ctx := loadSession(t, sm, "")
	sm.PutOAuthState(ctx, "abc123")

	if got := sm.TakeOAuthState(ctx); got != "abc123" {
		t.Errorf("TakeOAuthState() = %q, want %q", got, "abc123")
	}
	// Single use: a second take returns nothing.
	if got := sm.TakeOAuthState(ctx); got != "" {
		t.Errorf("second TakeOAuthState() = %q, want empty", got)
	}
}
