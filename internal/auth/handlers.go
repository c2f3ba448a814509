package auth

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"pressroom/internal/audit"
	"pressroom/internal/config"
)

// Controller handles registration, login, and logout endpoints.
type Controller struct {
	service     *Service
	sessions    *SessionManager
	templates   *template.Template
	rateLimiter *RateLimiter
	auditor     *audit.Recorder
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessions *SessionManager, templatesPath string, cfg config.Auth, auditor *audit.Recorder) *Controller {
	// Parse auth templates; the controller falls back to JSON when the
	// templating layer is absent (tests, API-only deployments).
	pattern := filepath.Join(templatesPath, "auth", "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		tmpl = nil
	}

	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &Controller{
		service:     service,
		sessions:    sessions,
		templates:   tmpl,
		rateLimiter: rateLimiter,
		auditor:     auditor,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *Controller) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// RegisterPage renders the registration form.
func (ac *Controller) RegisterPage(c *gin.Context) {
	if SessionStateFrom(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	ac.render(c, http.StatusOK, "register.html", gin.H{
		"Title":     "Register",
		"CSRFToken": GetCSRFToken(c),
	})
}

// Register handles the registration form submission.
func (ac *Controller) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := ac.service.Register(username, password)
	if err != nil {
		errorMsg := "Failed to create account"
		switch {
		case errors.Is(err, ErrUsernameRequired):
			errorMsg = "Username is required"
		case errors.Is(err, ErrPasswordRequired):
			errorMsg = "Password is required"
		case errors.Is(err, ErrUsernameInvalid):
			errorMsg = "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
		case errors.Is(err, ErrPasswordTooShort):
			errorMsg = "Password must be at least 8 characters"
		case errors.Is(err, ErrPasswordTooLong):
			errorMsg = "Password exceeds maximum length of 72 characters"
		case errors.Is(err, ErrUserExists):
			errorMsg = "Username is already taken"
		}

		ac.render(c, http.StatusOK, "register.html", gin.H{
			"Title":     "Register",
			"Username":  username,
			"CSRFToken": GetCSRFToken(c),
			"Error":     errorMsg,
		})
		return
	}

	ac.auditor.UserRegistered(user.ID, user.Username)
	c.Redirect(http.StatusFound, "/login")
}

// LoginPage renders the login form.
func (ac *Controller) LoginPage(c *gin.Context) {
	if SessionStateFrom(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	ac.render(c, http.StatusOK, "login.html", gin.H{
		"Title":     "Login",
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Login handles the login form submission. Bad credentials yield a 401 with
// a generic message that never distinguishes unknown user from wrong
// password.
func (ac *Controller) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		ac.render(c, http.StatusTooManyRequests, "login.html", gin.H{
			"Title":     "Login",
			"Username":  username,
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Too many login attempts. Please try again later.",
		})
		return
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.auditor.LoginFailed(username)

		ac.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title":     "Login",
			"Username":  username,
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Invalid username or password",
		})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessions.Bind(c.Request.Context(), user.ID, false); err != nil {
		ac.render(c, http.StatusInternalServerError, "login.html", gin.H{
			"Title":     "Login",
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Failed to create session",
		})
		return
	}

	ac.auditor.LoginSucceeded(user.ID, user.Username)
	c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session and redirects home.
func (ac *Controller) Logout(c *gin.Context) {
	_ = ac.sessions.Destroy(c.Request.Context())
	c.Redirect(http.StatusFound, "/")
}

// render executes an auth template or falls back to JSON.
func (ac *Controller) render(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil {
		c.JSON(status, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}
