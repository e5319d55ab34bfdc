package auth

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// scsWriter delays nothing but the first header write: right before it,
// the session is committed and its cookie added, so redirects and early
// aborts still carry the session.
type scsWriter struct {
	gin.ResponseWriter
	manager *scs.SessionManager
	req     *http.Request
	flushed bool
	err     error
}

func (w *scsWriter) commit() {
	if w.flushed {
		return
	}
	w.flushed = true

	ctx := w.req.Context()
	switch w.manager.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.manager.Commit(ctx)
		if err != nil {
			w.err = err
			return
		}
		w.manager.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.manager.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

func (w *scsWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *scsWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *scsWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *scsWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *scsWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// LoadAndSave is the gin counterpart of scs's net/http middleware.
func (s *ServerSessions) LoadAndSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Request.Cookie(s.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := s.Load(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &scsWriter{ResponseWriter: c.Writer, manager: s.SessionManager, req: c.Request}
		c.Writer = w
		c.Next()

		// Handlers that never wrote a body still need the cookie.
		w.commit()
		if w.err != nil {
			_ = c.Error(w.err)
		}
	}
}
