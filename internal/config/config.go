package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		OAuth
		Audit
		Cleanup
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	UI struct {
		TemplatesPath string
	}

	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration for the login endpoint
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	OAuth struct {
		GitHubClientID     string
		GitHubClientSecret string
		RedirectURL        string        // e.g. "https://example.com/auth/github/callback"
		Scopes             []string      // Provider scopes requested on login
		RequestTimeout     time.Duration // Timeout for token exchange and profile fetch
	}

	Audit struct {
		Dir string
	}

	Cleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("audit_dir", "./audit")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "1h")  // Cookie and server-side record share this TTL
	v.SetDefault("auth_bcrypt_cost", 10)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)   // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// OAuth federation defaults. Client id/secret have no defaults on
	// purpose: they must come from the environment.
	v.SetDefault("oauth_redirect_url", "")
	v.SetDefault("oauth_scopes", []string{"read:user"})
	v.SetDefault("oauth_request_timeout", "5s")

	// Session cleanup defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		OAuth: OAuth{
			GitHubClientID:     v.GetString("OAUTH_GITHUB_CLIENT_ID"),
			GitHubClientSecret: v.GetString("OAUTH_GITHUB_CLIENT_SECRET"),
			RedirectURL:        v.GetString("OAUTH_REDIRECT_URL"),
			Scopes:             v.GetStringSlice("OAUTH_SCOPES"),
			RequestTimeout:     v.GetDuration("OAUTH_REQUEST_TIMEOUT"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Cleanup: Cleanup{
			Enabled:  v.GetBool("CLEANUP_ENABLED"),
			Schedule: v.GetString("CLEANUP_SCHEDULE"),
		},
	}
}
