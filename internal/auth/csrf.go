package auth

import (
	"crypto/sha256"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for CSRF token in AJAX requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFFieldName is the form field gorilla/csrf reads the token from.
const CSRFFieldName = "gorilla.csrf.Token"

const contextKeyCSRFToken = "csrf_token"

// CSRFKey derives the 32-byte CSRF key from the session secret.
func CSRFKey(secret string) []byte {
	key := sha256.Sum256([]byte(secret + ":csrf"))
	return key[:]
}

// CSRFMiddleware rejects unsafe requests without a valid token and exposes
// the token to handlers through GetCSRFToken. With secure=false requests are
// treated as plain HTTP so the Referer check is skipped. Unsafe requests for
// which exempt returns true are let through unchecked; exempt may be nil.
func CSRFMiddleware(key []byte, secure bool, exempt func(c *gin.Context) bool) gin.HandlerFunc {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if !secure {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}
		if exempt != nil && !isSafeMethod(c.Request.Method) && exempt(c) {
			c.Request = csrf.UnsafeSkipCheck(c.Request)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Session Expired</title></head>
<body>
<h1>Session Expired</h1>
<p>The form was stale or incomplete. <a href="` + html.EscapeString(r.URL.Path) + `">Reload the page</a> and try again.</p>
</body>
</html>`))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// AnonymousOnly exempts requests whose session carries no user. Without a
// logged-in user a forged request acts with no authority, and the auth
// guards answer it with their own status codes.
func AnonymousOnly(sessions SessionStore) func(c *gin.Context) bool {
	return func(c *gin.Context) bool {
		return sessions.UserID(c) == 0
	}
}

// GetCSRFToken returns the masked token for the current request, or "" when
// CSRF protection is off.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}
