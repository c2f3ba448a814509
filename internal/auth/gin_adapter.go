package auth

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// sessionWriter wraps gin's ResponseWriter so the session cookie is committed
// right before the first byte of the response goes out. Gin handlers write
// headers eagerly, which defeats scs's own LoadAndSave wrapper.
type sessionWriter struct {
	gin.ResponseWriter
	sm          *SessionManager
	request     *http.Request
	wroteHeader bool
	committed   bool
}

func (w *sessionWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.commitSession()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.commitSession()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.commitSession()
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) commitSession() {
	if w.committed {
		return
	}
	w.committed = true

	ctx := w.request.Context()
	switch w.sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.sm.Commit(ctx)
		if err != nil {
			return
		}
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

// Hijack keeps WebSocket upgrades working through the wrapper.
func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// SessionLoadSave returns a Gin middleware that loads the session for the
// request and commits it on response. It must run before any session
// operations.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		sw := &sessionWriter{
			ResponseWriter: c.Writer,
			sm:             sm,
			request:        c.Request,
		}
		c.Writer = sw

		c.Next()

		// Commit even when the handler never wrote a body
		if !sw.wroteHeader {
			sw.commitSession()
		}
	}
}
