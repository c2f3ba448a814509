// Package auth provides authentication and authorization for the
// publishing service.
//
// It covers four concerns:
//   - password hashing and verification (bcrypt)
//   - server-side sessions transported as an HTTP cookie, persisted in the
//     database so they survive process restarts
//   - local credential login/registration handlers
//   - the authorization decision gating post mutation
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF secret, auto-generated if empty
//	AUTH_SESSION_LIFETIME=1h            # Fixed session TTL from issuance
//	AUTH_BCRYPT_COST=10                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
// Wire the middleware chain in the router:
//
//	router.Use(sessionManager.SessionLoadSave())
//	router.Use(middleware.LoadUser())
//
// Extract the caller in handlers:
//
//	user := auth.CurrentUser(c) // nil for anonymous sessions
package auth
