// Package http wires the application's routes: the public post feed, the
// authenticated post mutations, and the authentication endpoints registered
// by their own controllers.
package http

import (
	"github.com/gin-gonic/gin"

	"pressroom/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	router.Use(cfg.SessionManager.SessionLoadSave())

	// Resolve identity on every request before any route work
	router.Use(cfg.AuthMiddleware.LoadUser())

	cfg.AuthController.RegisterRoutes(router)
	if cfg.FederationController != nil {
		cfg.FederationController.RegisterRoutes(router)
	}

	postsController := NewPostsController(cfg.Posts, cfg.Auditor, cfg.TemplatesPath)
	router.GET("/", postsController.Home)

	authenticated := router.Group("/", cfg.AuthMiddleware.RequireAuthenticated())
	authenticated.GET("/create-post", postsController.CreatePostPage)
	authenticated.POST("/create-post", postsController.CreatePost)

	// Deletion is not behind RequireAuthenticated: the handler must answer
	// 401 rather than redirect, and decides authentication before existence.
	router.DELETE("/delete-post/:id", postsController.DeletePost)

	return router
}
