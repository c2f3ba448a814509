package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pressroom/internal/config"
	"pressroom/internal/database/users"
	"pressroom/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMiddleware(t *testing.T) (*Middleware, *SessionManager, *users.Repository) {
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

	sm, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	repo := users.NewRepository(db)
	return NewMiddleware(repo, sm), sm, repo
}

// bindSessionToken creates a persisted authenticated session and returns
// its token for use as a cookie value.
func bindSessionToken(t *testing.T, sm *SessionManager, userID uint) string {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if err := sm.Bind(ctx, userID, false); err != nil {
		t.Fatalf("failed to bind session: %v", err)
	}
	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("failed to commit session: %v", err)
	}
	return token
}

func newIdentityRouter(m *Middleware, sm *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(m.LoadUser())
	router.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username)
	})
	router.GET("/private", m.RequireAuthenticated(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	return router
}

func TestMiddleware_AnonymousRequest(t *testing.T) {
	m, sm, _ := setupMiddleware(t)
	router := newIdentityRouter(m, sm)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "anonymous" {
		t.Errorf("Expected anonymous identity, got %q", rr.Body.String())
	}
}

func TestMiddleware_AuthenticatedRequest(t *testing.T) {
	m, sm, repo := setupMiddleware(t)
	router := newIdentityRouter(m, sm)

	user := &entities.User{Username: "alice", PasswordHash: "x"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token := bindSessionToken(t, sm, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Body.String() != "alice" {
		t.Errorf("Expected identity 'alice', got %q", rr.Body.String())
	}
}

// A session bound to a user that has since disappeared resolves as
// anonymous rather than failing the request.
func TestMiddleware_StaleUserIDIsAnonymous(t *testing.T) {
	m, sm, _ := setupMiddleware(t)
	router := newIdentityRouter(m, sm)

	token := bindSessionToken(t, sm, 9999)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Body.String() != "anonymous" {
		t.Errorf("Expected anonymous identity, got %q", rr.Body.String())
	}
}

func TestMiddleware_RequireAuthenticated(t *testing.T) {
	m, sm, repo := setupMiddleware(t)
	router := newIdentityRouter(m, sm)

	// Anonymous callers are redirected to the login form.
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Expected redirect to /login, got %q", loc)
	}

	// Authenticated callers get through.
	user := &entities.User{Username: "bob", PasswordHash: "x"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token := bindSessionToken(t, sm, user.ID)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "secret" {
		t.Errorf("Expected gated content, got %q", rr.Body.String())
	}
}
