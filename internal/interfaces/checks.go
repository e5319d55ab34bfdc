package interfaces

// Compile-time checks that the concrete types satisfy the interfaces the
// router and middleware depend on.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/http"
)

// BookStore implementations
var _ http.BookStore = (*catalog.Service)(nil)

// SessionStore implementations
var _ auth.SessionStore = (*auth.CookieSessions)(nil)
var _ auth.SessionStore = (*auth.ServerSessions)(nil)
