package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pressroom/internal/audit"
	"pressroom/internal/auth"
	"pressroom/internal/config"
	"pressroom/internal/database"
	"pressroom/internal/database/posts"
	"pressroom/internal/database/users"
	"pressroom/internal/federation"
	"pressroom/internal/federation/providers"
	http_controllers "pressroom/internal/http"
	"pressroom/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it within the
// configured shutdown timeout.
func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the whole application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Pressroom v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	postRepo := posts.NewRepository(db.DB)
	auditor := audit.NewRecorder(cfg.Audit.Dir)

	// Underlying SQL DB for the session store and the cleanup job
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authService := auth.NewService(userRepo, cfg.Auth)
	authMiddleware := auth.NewMiddleware(userRepo, sessionManager)
	authController := auth.NewController(authService, sessionManager, cfg.UI.TemplatesPath, cfg.Auth, auditor)
	defer authController.Stop()

	// Federation controller is only wired when a provider is configured.
	var federationController *federation.Controller
	if cfg.OAuth.GitHubClientID != "" {
		registry := federation.NewRegistry()
		registry.Register(providers.NewGitHubProvider(cfg.OAuth))
		federationController = federation.NewController(registry, userRepo, sessionManager, auditor, cfg.OAuth.RequestTimeout)
		log.Printf("Federated login enabled: github")
	} else {
		log.Printf("Federated login disabled (OAUTH_GITHUB_CLIENT_ID not set)")
	}

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	var cleanup *scheduler.SessionCleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup = scheduler.NewSessionCleanupScheduler(sqlDB, cfg.Cleanup.Schedule)
		if err := cleanup.Start(); err != nil {
			log.Fatalf("Failed to start session cleanup scheduler: %v", err)
		}
	}

	if count, err := userRepo.Count(); err == nil && count == 0 {
		log.Printf("No users found. Register at /register or run 'pressroom create-admin'.")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Posts:                postRepo,
		Auditor:              auditor,
		SessionManager:       sessionManager,
		AuthMiddleware:       authMiddleware,
		AuthController:       authController,
		FederationController: federationController,
		CSRFSecret:           csrfSecret,
		SecureCookies:        cfg.Auth.SecureCookies,
		TemplatesPath:        cfg.UI.TemplatesPath,
	})

	onShutdown := func(ctx context.Context) {
		if cleanup != nil {
			cleanup.Stop()
		}
	}

	// Method override wraps the router so form-tunnelled DELETEs are
	// rewritten before routing dispatches on the method.
	Serve(http_controllers.MethodOverride(router), cfg, onShutdown)
}
